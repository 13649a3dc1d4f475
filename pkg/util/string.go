package util

import "strings"

// MaskKey masks an API key for logging. Only a short prefix survives.
func MaskKey(key string) string {
	if len(key) == 0 {
		return "{empty}"
	}

	h := len(key) / 3
	if h > 5 {
		h = 5
	}

	maskKey := key[0:h]
	return maskKey + strings.Repeat("*", len(key)-h)
}
