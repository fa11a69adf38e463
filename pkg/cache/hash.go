package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashJSON returns the [Hash] of v's JSON encoding.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
