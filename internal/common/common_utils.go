package common

import (
	"encoding/json"
	"fmt"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// DecodeCached converts a cached value into out. In-memory entries keep their Go type
// while Redis entries come back as generic JSON, so both go through a JSON round trip.
func DecodeCached(val interface{}, out interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode cached value: %w", err)
	}
	return nil
}
