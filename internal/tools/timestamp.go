package tools

import (
	"strconv"
	"strings"
	"time"

	"inkwell/internal/apperr"
)

type TimestampResult struct {
	Unix      int64  `json:"unix"`
	UnixMilli int64  `json:"unix_milli"`
	RFC3339   string `json:"rfc3339"`
	Local     string `json:"local"`
	Zone      string `json:"zone"`
}

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ConvertTimestamp accepts a unix timestamp (seconds, or milliseconds when it has 13
// digits) or a date string, and renders it in zone. Empty input means now.
func ConvertTimestamp(input, zone string, now time.Time) (*TimestampResult, error) {
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, apperr.Validation("未知的时区: " + zone)
	}

	input = strings.TrimSpace(input)
	var t time.Time
	switch {
	case input == "":
		t = now
	case isDigits(input):
		n, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return nil, apperr.Validation("时间戳超出范围")
		}
		if len(strings.TrimPrefix(input, "-")) >= 13 {
			t = time.UnixMilli(n)
		} else {
			t = time.Unix(n, 0)
		}
	default:
		parsed := false
		for _, layout := range layouts {
			if v, err := time.ParseInLocation(layout, input, loc); err == nil {
				t, parsed = v, true
				break
			}
		}
		if !parsed {
			return nil, apperr.Validation("无法识别的时间格式")
		}
	}

	t = t.In(loc)
	return &TimestampResult{
		Unix:      t.Unix(),
		UnixMilli: t.UnixMilli(),
		RFC3339:   t.Format(time.RFC3339),
		Local:     t.Format("2006-01-02 15:04:05"),
		Zone:      loc.String(),
	}, nil
}

func isDigits(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
