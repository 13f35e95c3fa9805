package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRect parses a "x0,y0,x1,y1" rectangle as used by the form and CLI
// clear-rect inputs. An empty string is the zero rectangle (no clearing).
func ParseRect(s string) (Rect, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rect{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("rectangle %q: expected x0,y0,x1,y1", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, fmt.Errorf("rectangle %q: bad number %q", s, p)
		}
		vals[i] = v
	}

	r := Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}
	if r.Width() < 0 || r.Height() < 0 {
		return Rect{}, fmt.Errorf("rectangle %q: upper-right corner below lower-left", s)
	}
	return r, nil
}

// ParseHexColor parses a "#rrggbb" color as produced by HTML color inputs.
// An empty string means white.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return White, nil
	}

	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: expected #rrggbb", s)
	}

	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: bad hex component", s)
		}
		rgb[i] = float64(v) / 255
	}

	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
