package tools

import (
	"strings"
	"unicode/utf8"

	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/apperr"
)

const (
	DefaultQRSize  = 256
	MaxQRSize      = 1024
	MaxQRTextRunes = 1000
)

var qrLevels = map[string]qrcode.RecoveryLevel{
	"":  qrcode.Medium,
	"l": qrcode.Low,
	"m": qrcode.Medium,
	"q": qrcode.High,
	"h": qrcode.Highest,
}

// QRCodePNG renders content as a PNG. level is one of l, m, q, h.
func QRCodePNG(content string, size int, level string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("内容不能为空")
	}
	if utf8.RuneCountInString(content) > MaxQRTextRunes {
		return nil, apperr.Validation("内容过长")
	}
	if size == 0 {
		size = DefaultQRSize
	}
	if size < 64 || size > MaxQRSize {
		return nil, apperr.Validation("尺寸需在 64 到 1024 之间")
	}
	rl, ok := qrLevels[strings.ToLower(level)]
	if !ok {
		return nil, apperr.Validation("纠错级别只能是 l、m、q、h")
	}

	png, err := qrcode.Encode(content, rl, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "生成二维码失败", err)
	}
	return png, nil
}
