package verdicts

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParseResponses decodes a questionId -> answer object. Answers may be strings, numbers or
// booleans. Anything that is not a JSON object yields an empty map.
func ParseResponses(raw []byte) map[string]string {
	out := map[string]string{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out
	}

	// a JSON string holding the object, as older clients send
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		raw = []byte(wrapped)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		zap.S().Warnw("discarding malformed verdict responses", "error", err)
		return out
	}
	return NormalizeResponses(generic)
}

// NormalizeResponses flattens decoded answers into strings
func NormalizeResponses(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			if val {
				out[k] = "Yes"
			} else {
				out[k] = "No"
			}
		case nil:
		default:
			b, err := json.Marshal(val)
			if err == nil {
				out[k] = string(b)
			}
		}
	}
	return out
}
