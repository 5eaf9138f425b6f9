package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/internal/exchange/bybit"
	"github.com/rnglab/param-robustness/internal/logger"
)

const (
	AppName    = "Robustness Data Downloader"
	AppVersion = "1.0.0"

	// Pause between paginated requests. Bybit allows 120 requests per
	// minute on public endpoints.
	requestPause = 500 * time.Millisecond
)

// DownloadFlags holds all command line flags for the download command
type DownloadFlags struct {
	Symbols  *string
	Interval *string
	Category *string
	DataRoot *string
	Start    *string
	End      *string
	Limit    *int
	EnvFile  *string
	LogLevel *string

	ShowVersion *bool
}

// NewDownloadFlags creates and registers all command line flags
func NewDownloadFlags() *DownloadFlags {
	return &DownloadFlags{
		Symbols:  flag.String("symbols", "BTCUSDT", "Comma-separated trading symbols (e.g. BTCUSDT,ETHUSDT)"),
		Interval: flag.String("interval", "1h", "Kline interval (5m, 15m, 1h, 4h, 1d)"),
		Category: flag.String("category", "linear", "Market category (spot, linear, inverse)"),
		DataRoot: flag.String("data-root", "data", "Root directory of historical CSV data"),
		Start:    flag.String("start", "", "Start date YYYY-MM-DD (default one year back)"),
		End:      flag.String("end", "", "End date YYYY-MM-DD (default now)"),
		Limit:    flag.Int("limit", 1000, "Klines per request (max 1000)"),
		EnvFile:  flag.String("env", ".env", "Environment file with exchange credentials"),
		LogLevel: flag.String("log-level", "info", "Log level (debug, info, warn, error)"),

		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

func main() {
	flags := NewDownloadFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	logger.Setup(*flags.LogLevel)

	if err := godotenv.Load(*flags.EnvFile); err != nil {
		log.Debug().Str("file", *flags.EnvFile).Msg("No environment file loaded")
	}

	symbols := splitSymbols(*flags.Symbols)
	if len(symbols) == 0 {
		log.Fatal().Msg("No symbols specified")
	}

	interval, err := bybit.IntervalFromString(*flags.Interval)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid interval")
	}

	start, end, err := parseDateRange(*flags.Start, *flags.End)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date range")
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    os.Getenv("BYBIT_API_KEY"),
		APISecret: os.Getenv("BYBIT_API_SECRET"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	category := strings.ToLower(strings.TrimSpace(*flags.Category))
	failures := 0
	for _, symbol := range symbols {
		outPath := filepath.Join(*flags.DataRoot, "bybit", category, symbol, string(interval), "candles.csv")
		if err := downloadSymbol(ctx, client, category, symbol, interval, start, end, *flags.Limit, outPath); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Download failed")
			failures++
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func splitSymbols(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.ToUpper(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDateRange(startFlag, endFlag string) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	if startFlag != "" {
		parsed, err := time.Parse("2006-01-02", startFlag)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date: %w", err)
		}
		start = parsed
	}
	if endFlag != "" {
		parsed, err := time.Parse("2006-01-02", endFlag)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date: %w", err)
		}
		end = parsed
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("end date %s is not after start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}

func downloadSymbol(ctx context.Context, client *bybit.Client, category, symbol string,
	interval bybit.KlineInterval, start, end time.Time, limit int, outPath string) error {

	log.Info().
		Str("symbol", symbol).
		Str("category", category).
		Str("interval", string(interval)).
		Time("start", start).
		Time("end", end).
		Msg("Downloading klines")

	klines, err := fetchRange(ctx, client, category, symbol, interval, start, end, limit)
	if err != nil {
		return err
	}
	if len(klines) == 0 {
		return fmt.Errorf("no klines returned for %s", symbol)
	}

	if err := writeCandlesCSV(klines, outPath); err != nil {
		return err
	}

	log.Info().
		Int("bars", len(klines)).
		Time("first", klines[0].StartTime).
		Time("last", klines[len(klines)-1].StartTime).
		Str("path", outPath).
		Msg("Saved candles")
	return nil
}

// fetchRange pages backwards from end towards start. Each response is newest
// first, so the next page ends just before the oldest bar seen so far.
func fetchRange(ctx context.Context, client *bybit.Client, category, symbol string,
	interval bybit.KlineInterval, start, end time.Time, limit int) ([]bybit.Kline, error) {

	var all []bybit.Kline
	currentEnd := end

	for currentEnd.After(start) {
		params := bybit.KlineParams{
			Category: category,
			Symbol:   symbol,
			Interval: interval,
			End:      &currentEnd,
			Limit:    limit,
		}

		var batch []bybit.Kline
		err := client.Retry(ctx, func() error {
			var fetchErr error
			batch, fetchErr = client.GetKlines(ctx, params)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		var oldest time.Time
		for _, k := range batch {
			if !k.StartTime.Before(start) && !k.StartTime.After(end) {
				all = append(all, k)
			}
			if oldest.IsZero() || k.StartTime.Before(oldest) {
				oldest = k.StartTime
			}
		}

		if !oldest.After(start) {
			break
		}
		currentEnd = oldest.Add(-time.Millisecond)

		log.Debug().Int("klines", len(all)).Str("symbol", symbol).Msg("Download progress")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(requestPause):
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.Before(all[j].StartTime) })
	return all, nil
}

// writeCandlesCSV writes bars in the layout the CSV data provider reads
func writeCandlesCSV(klines []bybit.Kline, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume", "turnover"}); err != nil {
		return err
	}

	for _, k := range klines {
		record := []string{
			k.StartTime.UTC().Format("2006-01-02 15:04:05"),
			formatValue(k.OpenPrice),
			formatValue(k.HighPrice),
			formatValue(k.LowPrice),
			formatValue(k.ClosePrice),
			formatValue(k.Volume),
			formatValue(k.Turnover),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
