package provider

import "strconv"

// ExtractScore normalizes a goal count from the shapes the provider returns.
//
// SofaScore score objects look like {"current": 2, "display": 2, "period1": 1}.
// Some endpoints send bare numbers or numeric strings. "current" wins, then
// "display", then "normaltime".
//
// Returns ok=false when no score is present (match not started).
func ExtractScore(val interface{}) (int, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
		return 0, false
	case map[string]interface{}:
		for _, key := range []string{"current", "display", "normaltime"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractScore(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ScorePtr wraps ExtractScore for nullable columns.
func ScorePtr(val interface{}) *int {
	n, ok := ExtractScore(val)
	if !ok {
		return nil
	}
	return &n
}
