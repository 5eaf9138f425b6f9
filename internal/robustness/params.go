package robustness

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ConstraintFunc validates a candidate parameter assignment.
// Implementations must be pure: same values, same verdict.
type ConstraintFunc func(values map[string]float64) error

// WindowOrder requires values[shortName] < values[longName]
func WindowOrder(shortName, longName string) ConstraintFunc {
	return func(values map[string]float64) error {
		short, long := values[shortName], values[longName]
		if short >= long {
			return fmt.Errorf("%s (%v) must be less than %s (%v)", shortName, short, longName, long)
		}
		return nil
	}
}

// MinValue requires values[name] >= min
func MinValue(name string, min float64) ConstraintFunc {
	return func(values map[string]float64) error {
		if v := values[name]; v < min {
			return fmt.Errorf("%s (%v) must be at least %v", name, v, min)
		}
		return nil
	}
}

// MaxValue requires values[name] <= max
func MaxValue(name string, max float64) ConstraintFunc {
	return func(values map[string]float64) error {
		if v := values[name]; v > max {
			return fmt.Errorf("%s (%v) must be at most %v", name, v, max)
		}
		return nil
	}
}

// ParameterSet is an immutable named mapping of parameter name to numeric
// value, together with the integer-precision markers and domain constraints
// that decide whether an assignment is valid. Mutating operations return a
// new set and leave the receiver untouched.
type ParameterSet struct {
	values      map[string]float64
	intFields   map[string]bool
	constraints []ConstraintFunc
	names       []string // sorted for deterministic iteration
}

// NewParameterSet creates a parameter set over the given values.
// All fields default to float precision and no constraints.
func NewParameterSet(values map[string]float64) ParameterSet {
	copied := make(map[string]float64, len(values))
	names := make([]string, 0, len(values))
	for name, v := range values {
		copied[name] = v
		names = append(names, name)
	}
	sort.Strings(names)

	return ParameterSet{
		values:    copied,
		intFields: make(map[string]bool),
		names:     names,
	}
}

// WithIntFields marks fields as integer-precision. Perturbed draws of these
// fields are rounded to the nearest integer before constraint checking.
func (ps ParameterSet) WithIntFields(names ...string) ParameterSet {
	out := ps.clone()
	for _, name := range names {
		out.intFields[name] = true
	}
	return out
}

// WithConstraints appends domain constraints to the set
func (ps ParameterSet) WithConstraints(constraints ...ConstraintFunc) ParameterSet {
	out := ps.clone()
	out.constraints = append(out.constraints, constraints...)
	return out
}

// Value returns the value of one field
func (ps ParameterSet) Value(name string) (float64, bool) {
	v, ok := ps.values[name]
	return v, ok
}

// Int returns an integer field rounded to int
func (ps ParameterSet) Int(name string) (int, bool) {
	v, ok := ps.values[name]
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

// Values returns a copy of the value mapping
func (ps ParameterSet) Values() map[string]float64 {
	copied := make(map[string]float64, len(ps.values))
	for name, v := range ps.values {
		copied[name] = v
	}
	return copied
}

// Names returns the field names in sorted order
func (ps ParameterSet) Names() []string {
	names := make([]string, len(ps.names))
	copy(names, ps.names)
	return names
}

// Len returns the number of fields
func (ps ParameterSet) Len() int {
	return len(ps.values)
}

// IsIntField reports whether a field carries integer precision
func (ps ParameterSet) IsIntField(name string) bool {
	return ps.intFields[name]
}

// Validate runs every constraint against the current values
func (ps ParameterSet) Validate() error {
	for _, constraint := range ps.constraints {
		if err := constraint(ps.values); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether two sets assign identical values to identical names.
// Precision markers and constraints are not compared.
func (ps ParameterSet) Equal(other ParameterSet) bool {
	if len(ps.values) != len(other.values) {
		return false
	}
	for name, v := range ps.values {
		ov, ok := other.values[name]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the set as "name=value" pairs in sorted order
func (ps ParameterSet) String() string {
	parts := make([]string, 0, len(ps.names))
	for _, name := range ps.names {
		if ps.intFields[name] {
			parts = append(parts, fmt.Sprintf("%s=%d", name, int(math.Round(ps.values[name]))))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%g", name, ps.values[name]))
		}
	}
	return strings.Join(parts, " ")
}

// MarshalJSON renders the value mapping only
func (ps ParameterSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.values)
}

// withValues builds a sibling set with the same precision markers and
// constraints but replaced values
func (ps ParameterSet) withValues(values map[string]float64) ParameterSet {
	out := ps.clone()
	for name := range out.values {
		if v, ok := values[name]; ok {
			out.values[name] = v
		}
	}
	return out
}

func (ps ParameterSet) clone() ParameterSet {
	values := make(map[string]float64, len(ps.values))
	for name, v := range ps.values {
		values[name] = v
	}
	intFields := make(map[string]bool, len(ps.intFields))
	for name := range ps.intFields {
		intFields[name] = true
	}
	constraints := make([]ConstraintFunc, len(ps.constraints))
	copy(constraints, ps.constraints)
	names := make([]string, len(ps.names))
	copy(names, ps.names)

	return ParameterSet{
		values:      values,
		intFields:   intFields,
		constraints: constraints,
		names:       names,
	}
}

// StrategyDescriptor names one unit of robustness analysis: a ticker and the
// base parameter set whose sensitivity is probed
type StrategyDescriptor struct {
	Ticker         string
	BaseParameters ParameterSet
}
