package billing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Recognized usage-data keys; the set consulted varies by model kind.
const (
	UsageKeyAgents             = "agents"
	UsageKeyIncludeSetupFee    = "include_setup_fee"
	UsageKeyUnits              = "units"
	UsageKeyActivityType       = "activity_type"
	UsageKeyOutcomeValue       = "outcome_value"
	UsageKeyOutcomeType        = "outcome_type"
	UsageKeyWorkflows          = "workflows"
	UsageKeyCommitmentExceeded = "commitment_exceeded"
)

// UsageData is the usage mapping handed to the calculation facade.
// Missing or malformed numeric fields resolve to zero; they are never an
// error condition.
type UsageData map[string]any

// Decimal returns the value at key as a decimal, or zero when missing or
// malformed
func (u UsageData) Decimal(key string) decimal.Decimal {
	v, ok := u[key]
	if !ok {
		return decimal.Zero
	}
	return toDecimal(v)
}

// Int returns the value at key truncated to an int64, or zero
func (u UsageData) Int(key string) int64 {
	return u.Decimal(key).IntPart()
}

// Bool returns the value at key as a bool; non-bool values are false
func (u UsageData) Bool(key string) bool {
	v, ok := u[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Str returns the value at key as a string, or ""
func (u UsageData) Str(key string) string {
	v, ok := u[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Workflows returns the per-workflow-type execution counts under the
// "workflows" key. Unrecognized shapes yield an empty map.
func (u UsageData) Workflows() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	v, ok := u[UsageKeyWorkflows]
	if !ok {
		return out
	}
	switch m := v.(type) {
	case map[string]any:
		for name, count := range m {
			out[name] = toDecimal(count)
		}
	case map[string]decimal.Decimal:
		for name, count := range m {
			out[name] = count
		}
	case map[string]int64:
		for name, count := range m {
			out[name] = decimal.NewFromInt(count)
		}
	case map[string]float64:
		for name, count := range m {
			out[name] = decimal.NewFromFloat(count)
		}
	}
	return out
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
