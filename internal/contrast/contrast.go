// Package contrast implements the WCAG relative luminance and contrast ratio
// formulas used by the RGAA colour criteria.
//
// See https://accessibilite.numerique.gouv.fr/methode/glossaire/#contraste
package contrast

import (
	"math"
	"strconv"
	"strings"
)

const (
	redCoefficient   = 0.2126
	greenCoefficient = 0.7152
	blueCoefficient  = 0.0722
	gamma            = 2.4
)

// RGB is a colour with channels in [0, 255]. Channels parsed from malformed
// input are NaN.
type RGB struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// Ratio returns the contrast ratio between two colours, always >= 1 for
// well-formed input. The result is NaN if either colour carries a NaN channel.
func Ratio(a, b RGB) float64 {
	l1 := RelativeLuminance(a.Red, a.Green, a.Blue)
	l2 := RelativeLuminance(b.Red, b.Green, b.Blue)
	lighter := math.Max(l1, l2)
	darker := math.Min(l1, l2)
	return (lighter + 0.05) / (darker + 0.05)
}

// RelativeLuminance returns the luminance of an sRGB colour in [0, 1].
func RelativeLuminance(r, g, b float64) float64 {
	return linearize(r)*redCoefficient + linearize(g)*greenCoefficient + linearize(b)*blueCoefficient
}

func linearize(v float64) float64 {
	c := v / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, gamma)
}

// ParseRGB reads a computed-style colour such as "rgb(255, 255, 255)".
// The "rgb(" prefix and ")" suffix are dropped and the remainder is split on
// commas. Input is not validated: a missing or non-numeric channel is NaN.
func ParseRGB(css string) RGB {
	s := strings.Replace(css, "rgb(", "", 1)
	s = strings.Replace(s, ")", "", 1)
	parts := strings.Split(s, ",")
	channel := func(i int) float64 {
		if i >= len(parts) {
			return math.NaN()
		}
		return toNumber(parts[i])
	}
	return RGB{Red: channel(0), Green: channel(1), Blue: channel(2)}
}

// toNumber mirrors numeric coercion of a trimmed string: empty is 0,
// anything unparsable is NaN.
func toNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
