package parser

import (
	"fmt"
	"strings"
)

// namedColors maps the color names accepted by the editor to hex values.
var namedColors = map[string]string{
	"white":     "#ffffff",
	"black":     "#000000",
	"gray":      "#808080",
	"lightgray": "#c8c8c8",
	"darkgray":  "#505050",
	"red":       "#e62937",
	"maroon":    "#be2137",
	"orange":    "#ffa100",
	"gold":      "#ffcb00",
	"yellow":    "#fdf900",
	"green":     "#00e430",
	"lime":      "#009e2f",
	"skyblue":   "#66bfff",
	"blue":      "#0079f1",
	"purple":    "#c87aff",
	"pink":      "#ff6dc2",
	"magenta":   "#ff00ff",
	"beige":     "#d3b083",
	"brown":     "#7f6a4f",
	"walnut":    "#5d4037",
	"oak":       "#c19a6b",
}

// ParseColor normalizes a color to lower-case "#rrggbb".
// Accepts "#rgb", "#rrggbb" (the leading # is optional) and the named colors.
func ParseColor(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[c]; ok {
		return hex, nil
	}

	c = strings.TrimPrefix(c, "#")
	if !isHex(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	switch len(c) {
	case 3:
		return "#" + string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]}), nil
	case 6:
		return "#" + c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
