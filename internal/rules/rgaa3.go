package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/raysh454/rgaalint/internal/contrast"
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

const (
	largeTextPx     = 24.0
	largeBoldTextPx = 18.5
	boldWeight      = 600
	normalRatio     = 4.5
	largeRatio      = 3.0
)

var (
	contrastSmall  = define(RuleContrastSmall, "Color contrasts for non-bold element with fontSize inferior to 24px should have at minimal 4.5 in contrast")
	contrastSmallB = define(RuleContrastSmallB, "Color contrasts for bold element with fontSize inferior to 18.5px should have at minimal 4.5 in contrast")
	contrastLarge  = define(RuleContrastLarge, "Color contrasts for non-bold element with fontSize superior or equal to 24px should have at minimal 3 in contrast")
	contrastLargeB = define(RuleContrastLargeB, "Color contrasts for bold element with fontSize superior or equal to 18.5px should have at minimal 3 in contrast")
)

// RGAA3 checks text colour contrast (topic 3).
type RGAA3 struct {
	mode model.Mode
}

func NewRGAA3(mode model.Mode) *RGAA3 {
	return &RGAA3{mode: mode}
}

// CheckContrasts evaluates every background/foreground pair. At most one of
// 3.2.1 to 3.2.4 fires per pair.
func (r *RGAA3) CheckContrasts(c ContrastCollection) ([]model.Violation, error) {
	var cvs []element.ContrastView
	switch r.mode {
	case model.ModeDOM:
		for _, p := range c.DOM {
			cvs = append(cvs, p.ContrastView())
		}
	case model.ModeVirtual:
		for _, v := range c.Virtual {
			cvs = append(cvs, v.ContrastView())
		}
	default:
		return nil, &UnsupportedModeError{Rule: "RGAA3", Mode: r.mode}
	}

	var out []model.Violation
	for _, cv := range cvs {
		if d, bad := contrastViolation(cv); bad {
			out = append(out, d.at(cv.Markup))
		}
	}
	return out, nil
}

func contrastViolation(cv element.ContrastView) (definition, bool) {
	ratio := contrast.Ratio(contrast.ParseRGB(cv.BackgroundColor), contrast.ParseRGB(cv.TextColor))
	size := fontSizePx(cv.FontSize)
	bold := isBold(cv.FontWeight)

	// NaN size or ratio fails every comparison and reports nothing.
	switch {
	case !bold && size < largeTextPx:
		return contrastSmall, ratio < normalRatio
	case bold && size < largeBoldTextPx:
		return contrastSmallB, ratio < normalRatio
	case !bold && size >= largeTextPx:
		return contrastLarge, ratio < largeRatio
	case bold && size >= largeBoldTextPx:
		return contrastLargeB, ratio < largeRatio
	}
	return definition{}, false
}

// fontSizePx reads the number before "px". A blank size is 0, so it counts
// as small text; a bare number is taken as pixels.
func fontSizePx(s string) float64 {
	num, _, _ := strings.Cut(s, "px")
	num = strings.TrimSpace(num)
	if num == "" {
		return 0
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isBold(weight string) bool {
	w := strings.TrimSpace(weight)
	if strings.EqualFold(w, "bold") {
		return true
	}
	n, err := strconv.ParseFloat(w, 64)
	return err == nil && n >= boldWeight
}
