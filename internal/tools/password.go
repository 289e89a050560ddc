package tools

import (
	"crypto/rand"
	"math"
	"math/big"

	"inkwell/internal/apperr"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.?"
	ambiguous   = "Il1O0o"
)

const (
	MinPasswordLength = 4
	MaxPasswordLength = 128
)

type PasswordOptions struct {
	Length           int  `json:"length"`
	Lower            bool `json:"lower"`
	Upper            bool `json:"upper"`
	Digits           bool `json:"digits"`
	Symbols          bool `json:"symbols"`
	ExcludeAmbiguous bool `json:"exclude_ambiguous"`
}

type PasswordResult struct {
	Password    string  `json:"password"`
	EntropyBits float64 `json:"entropy_bits"`
}

func without(set, drop string) string {
	out := make([]rune, 0, len(set))
	for _, r := range set {
		skip := false
		for _, d := range drop {
			if r == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, r)
		}
	}
	return string(out)
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// GeneratePassword draws from crypto/rand and guarantees one character of each selected class.
func GeneratePassword(opts PasswordOptions) (*PasswordResult, error) {
	if opts.Length < MinPasswordLength || opts.Length > MaxPasswordLength {
		return nil, apperr.Validation("密码长度需在 4 到 128 之间")
	}

	var classes []string
	for _, c := range []struct {
		on  bool
		set string
	}{
		{opts.Lower, lowerChars},
		{opts.Upper, upperChars},
		{opts.Digits, digitChars},
		{opts.Symbols, symbolChars},
	} {
		if !c.on {
			continue
		}
		set := c.set
		if opts.ExcludeAmbiguous {
			set = without(set, ambiguous)
		}
		classes = append(classes, set)
	}
	if len(classes) == 0 {
		return nil, apperr.Validation("至少选择一种字符类型")
	}

	pool := ""
	for _, set := range classes {
		pool += set
	}

	out := make([]byte, opts.Length)
	for i := range out {
		set := pool
		if i < len(classes) {
			set = classes[i]
		}
		idx, err := randIndex(len(set))
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "随机数生成失败", err)
		}
		out[i] = set[idx]
	}

	// 打乱，避免前几位固定为各类字符
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "随机数生成失败", err)
		}
		out[i], out[j] = out[j], out[i]
	}

	return &PasswordResult{
		Password:    string(out),
		EntropyBits: math.Round(float64(opts.Length)*math.Log2(float64(len(pool)))*10) / 10,
	}, nil
}
