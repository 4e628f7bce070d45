package contrast

import (
	"fmt"
	"strconv"
	"strings"
)

var namedColors = map[string][3]int{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"lime":    {0, 255, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"maroon":  {128, 0, 0},
	"navy":    {0, 0, 128},
	"purple":  {128, 0, 128},
	"teal":    {0, 128, 128},
	"olive":   {128, 128, 0},
	"orange":  {255, 165, 0},
	"fuchsia": {255, 0, 255},
	"aqua":    {0, 255, 255},
}

// CSSColorToRGBString converts a declared CSS colour to the "rgb(r, g, b)"
// form a browser reports as a computed value. It understands #rgb, #rrggbb,
// rgb()/rgba() and a handful of basic colour keywords. Anything else is
// returned unchanged so ParseRGB yields NaN for it.
func CSSColorToRGBString(css string) string {
	v := strings.ToLower(strings.TrimSpace(css))
	if v == "" {
		return css
	}

	if rgb, ok := namedColors[v]; ok {
		return formatRGB(rgb[0], rgb[1], rgb[2])
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return css
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return css
		}
		return formatRGB(int(n>>16&0xff), int(n>>8&0xff), int(n&0xff))
	}

	for _, fn := range []string{"rgba(", "rgb("} {
		if !strings.HasPrefix(v, fn) || !strings.HasSuffix(v, ")") {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(v, fn), ")"), ",")
		if len(parts) >= 3 {
			return "rgb(" + strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1]) + ", " + strings.TrimSpace(parts[2]) + ")"
		}
	}

	return css
}

func formatRGB(r, g, b int) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
