// Package tools holds the stateless utilities served under /api/tools.
package tools

import (
	"encoding/base64"
	"strings"

	"inkwell/internal/apperr"
)

func encoding(urlSafe bool) *base64.Encoding {
	if urlSafe {
		return base64.URLEncoding
	}
	return base64.StdEncoding
}

func Base64Encode(input string, urlSafe bool) string {
	return encoding(urlSafe).EncodeToString([]byte(input))
}

// Base64Decode accepts input with or without padding.
func Base64Decode(input string, urlSafe bool) (string, error) {
	input = strings.TrimSpace(input)
	raw := strings.TrimRight(input, "=")
	out, err := encoding(urlSafe).WithPadding(base64.NoPadding).DecodeString(raw)
	if err != nil {
		return "", apperr.Validation("不是有效的 Base64 字符串")
	}
	return string(out), nil
}
