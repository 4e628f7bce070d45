package rules

import (
	"regexp"
	"strings"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var (
	frameTitle     = define(RuleFrameTitle, "frame & iframe should have an attribute title")
	frameRelevance = define(RuleFrameRelevance, "frame & iframe title should be relevant (not empty nor a generic word such as frame or iframe)")
)

// DefaultBannedWords are always rejected in frame titles.
var DefaultBannedWords = []string{"frame", "frames", "iframe", "iframes"}

// RGAA2 checks frame and iframe titles (topic 2).
type RGAA2 struct {
	mode model.Mode
}

func NewRGAA2(mode model.Mode) *RGAA2 {
	return &RGAA2{mode: mode}
}

// CheckFrameTitles reports frames without a title attribute. An empty title
// is present and passes here; relevance is CheckFrameTitleRelevance's job.
func (r *RGAA2) CheckFrameTitles(c Collection[element.VirtualFrame]) ([]model.Violation, error) {
	vs, err := views("RGAA2", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		if !v.Has(element.AttrTitle) {
			out = append(out, frameTitle.at(v.Markup))
		}
	}
	return out, nil
}

// CheckFrameTitleRelevance reports frames whose title is empty or contains a
// banned word, case-insensitively. Frames without a title are skipped.
func (r *RGAA2) CheckFrameTitleRelevance(c Collection[element.VirtualFrame], customBannedWords []string) ([]model.Violation, error) {
	vs, err := views("RGAA2", r.mode, c)
	if err != nil {
		return nil, err
	}
	banned := bannedPattern(customBannedWords)
	var out []model.Violation
	for _, v := range vs {
		title, ok := v.Attr(element.AttrTitle)
		if !ok {
			continue
		}
		if title == "" || banned.MatchString(title) {
			out = append(out, frameRelevance.at(v.Markup))
		}
	}
	return out, nil
}

// bannedPattern compiles the default and custom words into one
// case-insensitive alternation. Words are matched literally.
func bannedPattern(custom []string) *regexp.Regexp {
	words := make([]string, 0, len(DefaultBannedWords)+len(custom))
	for _, w := range append(append([]string{}, DefaultBannedWords...), custom...) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		words = append(words, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, "|"))
}
