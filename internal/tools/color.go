package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"inkwell/internal/apperr"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

type ColorResult struct {
	Hex    string `json:"hex"`
	RGB    RGB    `json:"rgb"`
	HSL    HSL    `json:"hsl"`
	RGBCSS string `json:"rgb_css"`
	HSLCSS string `json:"hsl_css"`
}

// ConvertColor parses #rgb, #rrggbb, rgb(r, g, b) or hsl(h, s%, l%) and returns every form.
func ConvertColor(input string) (*ColorResult, error) {
	c, err := parseColor(strings.ToLower(strings.TrimSpace(input)))
	if err != nil {
		return nil, err
	}
	h := c.toHSL()
	return &ColorResult{
		Hex:    c.Hex(),
		RGB:    c,
		HSL:    h,
		RGBCSS: fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B),
		HSLCSS: fmt.Sprintf("hsl(%g, %g%%, %g%%)", h.H, h.S, h.L),
	}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var errBadColor = apperr.Validation("无法识别的颜色格式")

func parseColor(s string) (RGB, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts, err := splitArgs(s[4:len(s)-1], 3)
		if err != nil {
			return RGB{}, err
		}
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 255 {
				return RGB{}, errBadColor
			}
			v[i] = uint8(n)
		}
		return RGB{v[0], v[1], v[2]}, nil
	case strings.HasPrefix(s, "hsl(") && strings.HasSuffix(s, ")"):
		parts, err := splitArgs(s[4:len(s)-1], 3)
		if err != nil {
			return RGB{}, err
		}
		var v [3]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return RGB{}, errBadColor
			}
			v[i] = f
		}
		if v[0] < 0 || v[0] > 360 || v[1] < 0 || v[1] > 100 || v[2] < 0 || v[2] > 100 {
			return RGB{}, errBadColor
		}
		return HSL{H: v[0], S: v[1], L: v[2]}.toRGB(), nil
	default:
		return parseHex(s)
	}
}

func splitArgs(s string, n int) ([]string, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errBadColor
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parseHex(s string) (RGB, error) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, errBadColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, errBadColor
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func (c RGB) toHSL() HSL {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l := (max + min) / 2

	if max == min {
		return HSL{H: 0, S: 0, L: round1(l * 100)}
	}

	d := max - min
	var s float64
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	var h float64
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return HSL{H: round1(h * 60), S: round1(s * 100), L: round1(l * 100)}
}

func (h HSL) toRGB() RGB {
	s, l := h.S/100, h.L/100
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return RGB{v, v, v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h.H / 360

	channel := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}
	return RGB{channel(hk + 1.0/3), channel(hk), channel(hk - 1.0/3)}
}
