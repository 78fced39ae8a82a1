package llm

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// TryUnmarshal decodes a model reply into v.
// If the reply is not valid JSON, it is repaired and decoded again.
func TryUnmarshal(data string, v any) error {
	data = Clean(data)
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(data)
	if err != nil {
		return fmt.Errorf("failed to repair JSON: %v", err)
	}
	return json.Unmarshal([]byte(repaired), v)
}
