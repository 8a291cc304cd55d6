package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Use full SHA-256 hash (64 hex chars / 256 bits) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// pin is a stable representation of a variable pin for key hashing.
type pin struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// sortedPins converts a pin map into a deterministically ordered slice so
// that equal pin sets always hash to equal keys.
func sortedPins(sets map[string]float64) []pin {
	pins := make([]pin, 0, len(sets))
	for name, value := range sets {
		pins = append(pins, pin{Name: name, Value: value})
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i].Name < pins[j].Name })
	return pins
}
