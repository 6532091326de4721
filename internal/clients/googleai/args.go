package googleai

import (
	"encoding/json"
	"fmt"
)

func encodeArgs(args map[string]any) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode function call args: %w", err)
	}
	return string(b), nil
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}
	// Arguments were produced by encodeArgs; anything else is dropped.
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}
