package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/internal/backtest"
	"github.com/rnglab/param-robustness/internal/exchange/bybit"
	"github.com/rnglab/param-robustness/internal/logger"
	"github.com/rnglab/param-robustness/internal/monitoring"
	"github.com/rnglab/param-robustness/internal/robustness"
	"github.com/rnglab/param-robustness/pkg/config"
	datamanager "github.com/rnglab/param-robustness/pkg/data"
	"github.com/rnglab/param-robustness/pkg/reporting"
)

const (
	AppName    = "Param Robustness"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewRobustnessFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	if *flags.LogDir != "" {
		closeLog, err := logger.SetupWithFile(*flags.LogLevel, *flags.LogDir)
		if err != nil {
			logger.Setup(*flags.LogLevel)
			log.Fatal().Err(err).Msg("Logging setup error")
		}
		defer closeLog()
	} else {
		logger.Setup(*flags.LogLevel)
	}

	if err := ValidateRobustnessFlags(flags); err != nil {
		log.Fatal().Err(err).Msg("Flag validation error")
	}

	loadEnvironment(*flags.EnvFile)

	cfg, err := loadConfiguration(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	health := monitoring.NewHealthChecker()
	if *flags.MetricsAddr != "" {
		startMetricsServer(*flags.MetricsAddr, health)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runPortfolioAnalysis(ctx, cfg, *flags.Period, health)
	if err != nil {
		health.RecordError(err.Error())
		health.RunFinished("FAILED")
		log.Fatal().Err(err).Msg("Portfolio analysis error")
	}
	health.RunFinished(string(report.Status))

	runDir, err := outputReports(cfg, report)
	if err != nil {
		log.Fatal().Err(err).Msg("Report output error")
	}
	if runDir != "" {
		log.Info().Str("dir", runDir).Msg("Report artifacts written")
	}

	if report.Status != robustness.PortfolioStatusCompleted {
		os.Exit(1)
	}
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("No environment file loaded")
	}
}

// loadConfiguration builds the effective configuration from defaults, the
// optional config file, and flag overrides.
func loadConfiguration(flags *RobustnessFlags) (*config.RobustnessConfig, error) {
	tickers := SplitList(*flags.Tickers)

	manager := config.NewConfigManager()
	cfg, err := manager.LoadConfig(*flags.ConfigFile, *flags.DataRoot, *flags.OutputDir,
		tickers, *flags.Seed, *flags.Simulations, *flags.Workers)
	if err != nil {
		return nil, err
	}

	return applyFlagOverrides(cfg, flags)
}

// applyFlagOverrides applies the data and output flags LoadConfig does not
// know about, then re-validates the mutated configuration.
func applyFlagOverrides(cfg *config.RobustnessConfig, flags *RobustnessFlags) (*config.RobustnessConfig, error) {
	changed := false

	if *flags.Source != "" {
		cfg.Data.Source = strings.ToLower(*flags.Source)
		changed = true
	}
	if *flags.Exchange != "" {
		cfg.Data.Exchange = *flags.Exchange
		changed = true
	}
	if *flags.Interval != "" {
		cfg.Data.Interval = *flags.Interval
		changed = true
	}
	if *flags.ConsoleOnly {
		cfg.Output.Formats = []string{config.FormatConsole}
		changed = true
	} else if *flags.Formats != "" {
		cfg.Output.Formats = SplitList(strings.ToLower(*flags.Formats))
		changed = true
	}

	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// buildSeriesSource wires the configured data source into a series loader
func buildSeriesSource(cfg *config.RobustnessConfig) (*datamanager.SeriesSource, error) {
	var provider datamanager.DataProvider
	var resolver datamanager.SourceResolver

	switch cfg.Data.Source {
	case config.SourceCSV:
		provider = datamanager.NewCSVProvider()
		resolver = datamanager.CSVResolver(datamanager.NewDefaultFileLocator(),
			cfg.Data.DataDir, cfg.Data.Exchange, cfg.Data.Interval)

	case config.SourceBybit:
		client := bybit.NewClient(bybit.Config{
			APIKey:    os.Getenv("BYBIT_API_KEY"),
			APISecret: os.Getenv("BYBIT_API_SECRET"),
			Testnet:   os.Getenv("BYBIT_TESTNET") == "true",
			Demo:      os.Getenv("BYBIT_DEMO") == "true",
		})
		log.Info().Str("environment", client.GetEnvironment()).Msg("Using Bybit market data")

		bybitProvider, err := datamanager.NewBybitProvider(client,
			cfg.Data.Category, cfg.Data.Interval, cfg.Data.Limit)
		if err != nil {
			return nil, err
		}
		provider = bybitProvider
		resolver = datamanager.TickerResolver()

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Data.Source)
	}

	if cfg.Data.UseCache {
		provider = datamanager.NewCachedProvider(provider)
	}

	return datamanager.NewSeriesSource(provider, resolver), nil
}

func runPortfolioAnalysis(ctx context.Context, cfg *config.RobustnessConfig, periodFlag string, health *monitoring.HealthChecker) (*robustness.PortfolioReport, error) {
	source, err := buildSeriesSource(cfg)
	if err != nil {
		return nil, err
	}
	if periodFlag != "" {
		if period, ok := datamanager.ParseTrailingPeriod(periodFlag); ok {
			source.SetPeriod(period)
		}
	}

	evaluator, err := backtest.NewEvaluator(cfg.Backtest.InitialBalance, cfg.Backtest.Commission)
	if err != nil {
		return nil, err
	}

	manager := robustness.NewManager(evaluator, source.LoaderFunc(ctx))
	manager.SetProgressFunc(func(completed, total int, elapsed, estimatedRemaining time.Duration) {
		health.RunProgress(completed, total)
		log.Info().
			Int("completed", completed).
			Int("total", total).
			Dur("elapsed", elapsed).
			Dur("remaining", estimatedRemaining).
			Msg("Portfolio progress")
	})

	health.RunStarted(len(cfg.Strategies))
	return manager.AnalyzePortfolio(ctx, cfg.Descriptors(), cfg.Analysis)
}

func outputReports(cfg *config.RobustnessConfig, report *robustness.PortfolioReport) (string, error) {
	manager := reporting.NewReportingManager(reporting.ReportingConfig{
		Directory: cfg.Output.Directory,
		Console:   cfg.HasFormat(config.FormatConsole),
		CSV:       cfg.HasFormat(config.FormatCSV),
		JSON:      cfg.HasFormat(config.FormatJSON),
		Excel:     cfg.HasFormat(config.FormatExcel),
	})
	return manager.ReportAll(report)
}

// startMetricsServer exposes the metrics and health endpoints in the background
func startMetricsServer(addr string, health *monitoring.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	go func() {
		log.Info().Str("addr", addr).Msg("Serving Prometheus metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}
