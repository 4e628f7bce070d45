package element

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	cssparse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"

	"github.com/raysh454/rgaalint/internal/contrast"
)

const (
	defaultColor      = "rgb(0, 0, 0)"
	defaultBackground = "rgb(255, 255, 255)"
	defaultFontSize   = 16.0
	defaultFontWeight = "400"
)

// styleToken is one value token of a declaration.
type styleToken struct {
	tt   css.TokenType
	data string
}

// declarations parses an inline style attribute. Property names are
// lower-cased, later declarations win and !important is dropped.
// Declarations the parser rejects are skipped.
func declarations(decl string) map[string][]styleToken {
	out := make(map[string][]styleToken)
	p := css.NewParser(cssparse.NewInputString(decl), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			var perr *cssparse.Error
			if errors.As(p.Err(), &perr) {
				continue
			}
			return out
		case css.DeclarationGrammar:
			out[strings.ToLower(string(data))] = valueTokens(p.Values())
		}
	}
}

func valueTokens(vals []css.Token) []styleToken {
	toks := make([]styleToken, 0, len(vals))
	for _, v := range vals {
		if v.TokenType == css.WhitespaceToken && (len(toks) == 0 || toks[len(toks)-1].tt == css.WhitespaceToken) {
			continue
		}
		toks = append(toks, styleToken{tt: v.TokenType, data: string(v.Data)})
	}
	toks = trimWhitespace(toks)
	// !important
	if n := len(toks); n >= 2 && toks[n-1].tt == css.IdentToken && strings.EqualFold(toks[n-1].data, "important") {
		bang := n - 2
		if toks[bang].tt == css.WhitespaceToken && bang > 0 {
			bang--
		}
		if toks[bang].tt == css.DelimToken && toks[bang].data == "!" {
			toks = trimWhitespace(toks[:bang])
		}
	}
	return toks
}

func trimWhitespace(toks []styleToken) []styleToken {
	for len(toks) > 0 && toks[0].tt == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].tt == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func joinTokens(toks []styleToken) string {
	var b strings.Builder
	for _, t := range toks {
		if t.tt == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(t.data)
	}
	return b.String()
}

// ParseStyle parses an inline style declaration list into lower-cased
// property names and their values. Later declarations win.
func ParseStyle(decl string) map[string]string {
	decls := declarations(decl)
	out := make(map[string]string, len(decls))
	for name, toks := range decls {
		out[name] = joinTokens(toks)
	}
	return out
}

// InlineStyle returns the parsed style attribute of the first node of sel.
func InlineStyle(sel *goquery.Selection) map[string]string {
	if sel == nil || sel.Length() == 0 {
		return map[string]string{}
	}
	s, _ := sel.First().Attr(AttrStyle)
	return ParseStyle(s)
}

// IsVisuallyHidden reports whether the declarations match one of the
// screen-reader-only patterns: absolutely positioned and either pushed off
// screen, clipped to nothing, or shrunk to a single pixel.
func IsVisuallyHidden(style map[string]string) bool {
	if compact(style["position"]) != "absolute" {
		return false
	}
	switch compact(style["left"]) {
	case "-10000px", "-9999px":
		return true
	}
	switch compact(style["clip"]) {
	case "rect(0,0,0,0)", "rect(0px,0px,0px,0px)":
		return true
	}
	if compact(style["clip-path"]) == "inset(50%)" {
		return true
	}
	return style["width"] == "1px" || style["height"] == "1px"
}

func compact(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// ComputedStyle is the subset of computed style used by the contrast rules.
// Colours are rgb() strings, the font size is in pixels.
type ComputedStyle struct {
	Color           string
	BackgroundColor string
	FontSize        string
	FontWeight      string
}

// StyleOf resolves colour, background and font metrics from inline
// styles. Colour, font size and weight inherit from ancestors; the background
// is the element's own or white.
func StyleOf(sel *goquery.Selection) ComputedStyle {
	cs := ComputedStyle{
		Color:           defaultColor,
		BackgroundColor: defaultBackground,
		FontSize:        formatPx(defaultFontSize),
		FontWeight:      defaultFontWeight,
	}
	if sel == nil || sel.Length() == 0 {
		return cs
	}

	// root first so descendants override
	var chain []*html.Node
	for n := sel.Get(0); n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			chain = append(chain, n)
		}
	}

	size := defaultFontSize
	for i := len(chain) - 1; i >= 0; i-- {
		decls := declarations(attrOf(chain[i], AttrStyle))
		if c := decls["color"]; len(c) > 0 {
			cs.Color = contrast.CSSColorToRGBString(joinTokens(c))
		}
		if fs := decls["font-size"]; len(fs) > 0 {
			size = resolveFontSize(fs, size)
		}
		if fw := decls["font-weight"]; len(fw) > 0 {
			cs.FontWeight = normalizeWeight(fw, cs.FontWeight)
		}
		if i == 0 {
			bg := joinTokens(decls["background-color"])
			if bg == "" {
				bg = colorIn(decls["background"])
			}
			if bg != "" {
				cs.BackgroundColor = contrast.CSSColorToRGBString(bg)
			}
		}
	}
	cs.FontSize = formatPx(size)
	return cs
}

func attrOf(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// resolveFontSize converts a font-size value to pixels relative to the
// parent size. Keywords and unknown units keep the inherited size.
func resolveFontSize(toks []styleToken, parent float64) float64 {
	if len(toks) != 1 {
		return parent
	}
	t := toks[0]
	switch t.tt {
	case css.DimensionToken:
		num, unit := splitDimension(t.data)
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return parent
		}
		switch strings.ToLower(unit) {
		case "px":
			return f
		case "pt":
			return f * 4 / 3
		case "em":
			return f * parent
		case "rem":
			return f * defaultFontSize
		}
	case css.PercentageToken:
		if f, err := strconv.ParseFloat(strings.TrimSuffix(t.data, "%"), 64); err == nil {
			return f * parent / 100
		}
	}
	return parent
}

// splitDimension splits "1.5em" into "1.5" and "em".
func splitDimension(s string) (string, string) {
	i := strings.LastIndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) + 1
	return s[:i], s[i:]
}

func normalizeWeight(toks []styleToken, inherited string) string {
	if len(toks) != 1 {
		return inherited
	}
	t := toks[0]
	switch t.tt {
	case css.IdentToken:
		switch strings.ToLower(t.data) {
		case "bold", "bolder":
			return "700"
		case "normal", "lighter":
			return "400"
		}
	case css.NumberToken:
		if _, err := strconv.Atoi(t.data); err == nil {
			return t.data
		}
	}
	return inherited
}

func formatPx(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "px"
}

// colorIn picks the colour out of a background shorthand.
func colorIn(toks []styleToken) string {
	for i, t := range toks {
		switch t.tt {
		case css.HashToken:
			return t.data
		case css.FunctionToken:
			name := strings.ToLower(strings.TrimSuffix(t.data, "("))
			if name != "rgb" && name != "rgba" {
				continue
			}
			for j := i + 1; j < len(toks); j++ {
				if toks[j].tt == css.RightParenthesisToken {
					return joinTokens(toks[i : j+1])
				}
			}
		case css.IdentToken:
			if c := contrast.CSSColorToRGBString(t.data); c != t.data {
				return c
			}
		}
	}
	return ""
}
