package tools

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
)

func TestBase64(t *testing.T) {
	enc := Base64Encode("你好, inkwell?", false)
	out, err := Base64Decode(enc, false)
	require.NoError(t, err)
	assert.Equal(t, "你好, inkwell?", out)

	// 无填充也能解码
	out, err = Base64Decode("aGk", false)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	assert.Equal(t, "Pz8_", Base64Encode("???", true))
	assert.Equal(t, "Pz8/", Base64Encode("???", false))

	_, err = Base64Decode("***", false)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestGeneratePassword(t *testing.T) {
	res, err := GeneratePassword(PasswordOptions{Length: 24, Lower: true, Upper: true, Digits: true, Symbols: true})
	require.NoError(t, err)
	assert.Len(t, res.Password, 24)
	assert.Regexp(t, regexp.MustCompile(`[a-z]`), res.Password)
	assert.Regexp(t, regexp.MustCompile(`[A-Z]`), res.Password)
	assert.Regexp(t, regexp.MustCompile(`[0-9]`), res.Password)
	assert.Greater(t, res.EntropyBits, 100.0)

	res, err = GeneratePassword(PasswordOptions{Length: 64, Digits: true, ExcludeAmbiguous: true})
	require.NoError(t, err)
	assert.NotContains(t, res.Password, "0")
	assert.NotContains(t, res.Password, "1")

	_, err = GeneratePassword(PasswordOptions{Length: 12})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	_, err = GeneratePassword(PasswordOptions{Length: 2, Lower: true})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestConvertColor(t *testing.T) {
	tests := []struct {
		input string
		hex   string
		rgb   RGB
		hsl   HSL
	}{
		{"#ff0000", "#ff0000", RGB{255, 0, 0}, HSL{0, 100, 50}},
		{"#0f0", "#00ff00", RGB{0, 255, 0}, HSL{120, 100, 50}},
		{"rgb(0, 0, 255)", "#0000ff", RGB{0, 0, 255}, HSL{240, 100, 50}},
		{"hsl(0, 0%, 100%)", "#ffffff", RGB{255, 255, 255}, HSL{0, 0, 100}},
		{"808080", "#808080", RGB{128, 128, 128}, HSL{0, 0, 50.2}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := ConvertColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.hex, res.Hex)
			assert.Equal(t, tt.rgb, res.RGB)
			assert.Equal(t, tt.hsl, res.HSL)
		})
	}

	for _, bad := range []string{"#12", "rgb(1,2)", "rgb(300,0,0)", "hsl(400,0%,0%)", "blue"} {
		_, err := ConvertColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestConvertTimestamp(t *testing.T) {
	res, err := ConvertTimestamp("1700000000", "Asia/Shanghai", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1700000000, res.Unix)
	assert.Equal(t, "2023-11-15 06:13:20", res.Local)
	assert.Equal(t, "Asia/Shanghai", res.Zone)

	res, err = ConvertTimestamp("1700000000123", "UTC", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1700000000123, res.UnixMilli)

	res, err = ConvertTimestamp("2024-01-02 03:04:05", "UTC", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", res.RFC3339)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	res, err = ConvertTimestamp("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), res.Unix)

	_, err = ConvertTimestamp("yesterday", "UTC", now)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	_, err = ConvertTimestamp("1", "Mars/Base", now)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("https://example.com", 0, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = QRCodePNG("", 256, "m")
	assert.Error(t, err)
	_, err = QRCodePNG("x", 10, "m")
	assert.Error(t, err)
	_, err = QRCodePNG("x", 256, "z")
	assert.Error(t, err)
}

func TestGenerateData(t *testing.T) {
	a, err := GenerateData(KindEmail, 5, 42)
	require.NoError(t, err)
	b, err := GenerateData(KindEmail, 5, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	for _, e := range a {
		assert.True(t, strings.Contains(e, "@example."))
	}

	phones, err := GenerateData(KindPhone, 3, 1)
	require.NoError(t, err)
	for _, p := range phones {
		assert.Regexp(t, regexp.MustCompile(`^1\d{10}$`), p)
	}

	ids, err := GenerateData(KindUUID, 2, 0)
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], ids[1])

	_, err = GenerateData("planet", 1, 0)
	assert.Error(t, err)
	_, err = GenerateData(KindName, 101, 0)
	assert.Error(t, err)
}
