package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

func strp(s string) *string { return &s }

func doc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func nodes(d *goquery.Document, selector string) []*goquery.Selection {
	var out []*goquery.Selection
	d.Find(selector).Each(func(_ int, s *goquery.Selection) { out = append(out, s) })
	return out
}

func rulesOf(vs []model.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUnsupportedMode(t *testing.T) {
	bad := model.Mode("shadow")
	checks := map[string]func() error{
		"images": func() error {
			_, err := NewRGAA1(bad).CheckImages(Collection[element.VirtualImage]{})
			return err
		},
		"frames": func() error {
			_, err := NewRGAA2(bad).CheckFrameTitles(Collection[element.VirtualFrame]{})
			return err
		},
		"contrast": func() error {
			_, err := NewRGAA3(bad).CheckContrasts(ContrastCollection{})
			return err
		},
		"links": func() error {
			_, err := NewRGAA6(bad).CheckLinks(Collection[element.VirtualLink]{})
			return err
		},
		"doctype": func() error {
			_, err := NewRGAA8(bad).CheckDoctype(DocumentCollection{})
			return err
		},
		"headings": func() error {
			_, err := NewRGAA9(bad).CheckHierarchy(Collection[element.VirtualHeading]{})
			return err
		},
		"labels": func() error {
			_, err := NewRGAA11(bad).CheckLabels(Collection[element.VirtualFormField]{})
			return err
		},
	}
	for name, check := range checks {
		err := check()
		if !errors.Is(err, ErrUnsupportedMode) {
			t.Errorf("%s: err = %v, want ErrUnsupportedMode", name, err)
		}
		var ume *UnsupportedModeError
		if !errors.As(err, &ume) || ume.Mode != bad {
			t.Errorf("%s: err = %#v, want *UnsupportedModeError", name, err)
		}
	}
}

func TestCheckImages_Virtual(t *testing.T) {
	in := Collection[element.VirtualImage]{Virtual: []element.VirtualImage{
		{Type: "img", OuterHTML: "<img>"},
		{Type: "img", Alt: strp(""), OuterHTML: `<img alt="">`},
		{Type: "img", Title: strp("t"), OuterHTML: `<img title="t">`},
		{Type: "area", AriaLabel: strp("a"), OuterHTML: `<area aria-label="a">`},
		{Type: "area", Title: strp("t"), OuterHTML: `<area title="t">`},
		{Type: "svg", Role: strp("img"), OuterHTML: `<svg role="img">`},
		{Type: "svg", OuterHTML: `<svg>`},
		{Type: "svg", Role: strp("img"), AriaLabelledby: strp("x"), OuterHTML: `<svg role="img" aria-labelledby="x">`},
	}}
	got, err := NewRGAA1(model.ModeVirtual).CheckImages(in)
	if err != nil {
		t.Fatalf("CheckImages: %v", err)
	}
	want := []string{RuleImageAlt, RuleImageAlt, RuleAreaAlt, RuleSVGLabel}
	if !equalStrings(rulesOf(got), want) {
		t.Fatalf("rules = %v, want %v", rulesOf(got), want)
	}
	if got[2].Element != `<area title="t">` {
		t.Errorf("element = %q", got[2].Element)
	}
	if got[0].RuleLink != LinkBase+"1.1.1" {
		t.Errorf("link = %q", got[0].RuleLink)
	}
}

func TestCheckFrameTitles(t *testing.T) {
	d := doc(t, `<iframe src="a"></iframe><iframe title=""></iframe><frameset><frame title="x"></frameset>`)
	got, err := NewRGAA2(model.ModeDOM).CheckFrameTitles(Collection[element.VirtualFrame]{DOM: nodes(d, "iframe")})
	if err != nil {
		t.Fatalf("CheckFrameTitles: %v", err)
	}
	if len(got) != 1 || got[0].Rule != RuleFrameTitle {
		t.Fatalf("got %v, want one 2.1.1", got)
	}
}

func TestCheckFrameTitleRelevance(t *testing.T) {
	frames := Collection[element.VirtualFrame]{Virtual: []element.VirtualFrame{
		{Title: strp("A video game"), OuterHTML: "a"},
	}}
	r := NewRGAA2(model.ModeVirtual)

	got, err := r.CheckFrameTitleRelevance(frames, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("no custom words: got %v, %v", got, err)
	}
	got, err = r.CheckFrameTitleRelevance(frames, []string{"video"})
	if err != nil || len(got) != 1 || got[0].Rule != RuleFrameRelevance {
		t.Fatalf("with video: got %v, %v", got, err)
	}

	cases := []struct {
		title *string
		bad   bool
	}{
		{strp(""), true},
		{strp("My IFrame"), true},
		{strp("Frames"), true},
		{strp("Map of Paris"), false},
		{nil, false},
	}
	for _, c := range cases {
		in := Collection[element.VirtualFrame]{Virtual: []element.VirtualFrame{{Title: c.title}}}
		got, _ := r.CheckFrameTitleRelevance(in, []string{" ", "a.b"})
		if (len(got) == 1) != c.bad {
			t.Errorf("title %v: got %d violations, bad=%v", c.title, len(got), c.bad)
		}
	}
}

func TestCheckContrasts(t *testing.T) {
	cases := []struct {
		name   string
		fg     string
		size   string
		weight string
		want   string
	}{
		{"small low", "rgb(138, 138, 255)", "16px", "400", RuleContrastSmall},
		{"small ok", "rgb(97, 97, 255)", "16px", "400", ""},
		{"small bold low", "rgb(138, 138, 255)", "16px", "700", RuleContrastSmallB},
		{"bold keyword", "rgb(138, 138, 255)", "16px", "bold", RuleContrastSmallB},
		{"large passes at 3", "rgb(120, 120, 255)", "24px", "400", ""},
		{"large low", "rgb(200, 200, 200)", "24px", "400", RuleContrastLarge},
		{"large bold low", "rgb(200, 200, 200)", "18.5px", "600", RuleContrastLargeB},
		{"malformed colour", "blue-ish", "16px", "400", ""},
		{"malformed size", "rgb(200, 200, 200)", "big", "400", ""},
		{"empty size is small", "rgb(200, 200, 200)", "", "400", RuleContrastSmall},
		{"blank size is small", "rgb(200, 200, 200)", "  ", "700", RuleContrastSmallB},
		{"unitless size", "rgb(200, 200, 200)", "30", "400", RuleContrastLarge},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := ContrastCollection{Virtual: []element.VirtualContrast{{
				BackgroundColor: "rgb(255, 255, 255)",
				TextColor:       c.fg,
				FontSize:        c.size,
				FontWeight:      c.weight,
				OuterHTML:       "<p>x</p>",
			}}}
			got, err := NewRGAA3(model.ModeVirtual).CheckContrasts(in)
			if err != nil {
				t.Fatalf("CheckContrasts: %v", err)
			}
			if c.want == "" {
				if len(got) != 0 {
					t.Fatalf("got %v, want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Rule != c.want {
				t.Fatalf("got %v, want %s", rulesOf(got), c.want)
			}
		})
	}
}

func TestCheckLinks(t *testing.T) {
	d := doc(t, `
<a href="/a"></a>
<a href="#top"></a>
<a href="/b" aria-label="  "></a>
<a href="/c" aria-labelledby=""></a>
<a href="/d" title="Docs"></a>
<a href="/e"> Home </a>
<a href="/f"><img alt="x"></a>`)
	got, err := NewRGAA6(model.ModeDOM).CheckLinks(Collection[element.VirtualLink]{DOM: nodes(d, "a")})
	if err != nil {
		t.Fatalf("CheckLinks: %v", err)
	}
	var els []string
	for _, v := range got {
		els = append(els, v.Element)
	}
	want := []string{`<a href="/a"></a>`, `<a href="/b" aria-label="  "></a>`, `<a href="/c" aria-labelledby=""></a>`, `<a href="/f"><img alt="x"/></a>`}
	if !equalStrings(els, want) {
		t.Fatalf("elements = %q, want %q", els, want)
	}
}

func TestCheckDocument(t *testing.T) {
	in := DocumentCollection{Virtual: []element.VirtualDocument{
		{URL: "https://ok", HasDoctype: true, DoctypeFirst: true, Lang: "fr", Title: "Home"},
		{URL: "https://bad"},
		{URL: "https://late", HasDoctype: true, Lang: "en", Title: "x"},
	}}
	r := NewRGAA8(model.ModeVirtual)

	dt, _ := r.CheckDoctype(in)
	if got, want := rulesOf(dt), []string{RuleDoctype, RuleDoctypeFirst, RuleDoctypeFirst}; !equalStrings(got, want) {
		t.Errorf("doctype rules = %v, want %v", got, want)
	}
	if dt[0].Element != "https://bad" || dt[0].RuleLink != LinkBase+"8.1" {
		t.Errorf("doctype violation = %+v", dt[0])
	}
	lang, _ := r.CheckLang(in)
	if len(lang) != 1 || lang[0].Element != "https://bad" {
		t.Errorf("lang = %v", lang)
	}
	title, _ := r.CheckTitle(in)
	if len(title) != 1 || title[0].Rule != RuleTitle {
		t.Errorf("title = %v", title)
	}
}

func TestCheckDocument_DOM(t *testing.T) {
	d := doc(t, `<html><head><title> </title></head><body></body></html>`)
	in := DocumentCollection{DOM: []element.DOMDocument{{Doc: d, URL: "https://x"}}}
	r := NewRGAA8(model.ModeDOM)
	var all []model.Violation
	for _, check := range []func(DocumentCollection) ([]model.Violation, error){r.CheckDoctype, r.CheckLang, r.CheckTitle} {
		vs, err := check(in)
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, vs...)
	}
	want := []string{RuleDoctype, RuleDoctypeFirst, RuleLang, RuleTitle}
	if !equalStrings(rulesOf(all), want) {
		t.Errorf("rules = %v, want %v", rulesOf(all), want)
	}
}

func headings(levels ...int) Collection[element.VirtualHeading] {
	var c Collection[element.VirtualHeading]
	for i, l := range levels {
		tag := "H" + string(rune('0'+l))
		c.Virtual = append(c.Virtual, element.VirtualHeading{TagName: tag, OuterHTML: tag + "#" + string(rune('0'+i))})
	}
	return c
}

func TestCheckHierarchy(t *testing.T) {
	cases := []struct {
		levels []int
		want   int
	}{
		{[]int{1, 2, 3}, 0},
		{[]int{1, 3}, 1},
		{[]int{1, 3, 5}, 2},
		{[]int{1, 2, 3, 2}, 0},
		{[]int{1, 2, 3, 1}, 1},
		{[]int{2}, 0},
		{nil, 0},
	}
	r := NewRGAA9(model.ModeVirtual)
	for _, c := range cases {
		got, err := r.CheckHierarchy(headings(c.levels...))
		if err != nil {
			t.Fatalf("%v: %v", c.levels, err)
		}
		if len(got) != c.want {
			t.Errorf("%v: %d violations, want %d", c.levels, len(got), c.want)
		}
	}

	got, _ := r.CheckHierarchy(headings(1, 3))
	if got[0].Element != "H3#1" {
		t.Errorf("reported %q, want the level-3 heading", got[0].Element)
	}
}

func TestCheckHierarchy_IndexOrderAndRoles(t *testing.T) {
	i0, i1, i2 := 0, 1, 2
	in := Collection[element.VirtualHeading]{Virtual: []element.VirtualHeading{
		{TagName: "DIV", Role: strp("heading"), AriaLevel: strp("3"), Index: &i2, OuterHTML: "third"},
		{TagName: "H1", Index: &i0, OuterHTML: "first"},
		{TagName: "DIV", Role: strp("heading"), AriaLevel: strp("2"), Index: &i1, OuterHTML: "second"},
		{TagName: "DIV", Role: strp("heading"), AriaLevel: strp("x"), OuterHTML: "ignored"},
	}}
	got, err := NewRGAA9(model.ModeVirtual).CheckHierarchy(in)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v; want none", got, err)
	}
}

func TestCheckStructure(t *testing.T) {
	d := doc(t, `<h2>a</h2><div role="heading" aria-level="2">b</div>
<div role="heading">c</div><div role="heading" aria-level="0">d</div><p role="heading" aria-level="2abc">e</p>`)
	got, err := NewRGAA9(model.ModeDOM).CheckStructure(Collection[element.VirtualHeading]{DOM: nodes(d, "h2, [role=heading]")})
	if err != nil {
		t.Fatalf("CheckStructure: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d violations, want 2: %v", len(got), got)
	}
	if !strings.Contains(got[0].Element, ">c<") || !strings.Contains(got[1].Element, ">d<") {
		t.Errorf("elements = %q, %q", got[0].Element, got[1].Element)
	}
}

func TestCheckLabels_Virtual(t *testing.T) {
	fields := []element.VirtualFormField{
		{Type: "input", OuterHTML: "bare"},
		{Type: "input", AriaLabel: strp("Name"), OuterHTML: "aria"},
		{Type: "input", HasLabelFor: true, OuterHTML: "label"},
		{Type: "input", Title: strp("t"), OuterHTML: "title"},
		{Type: "input", HasAdjacentButton: true, AdjacentButtonHasValidLabel: true, HasHiddenLabel: true, OuterHTML: "hidden"},
		{Type: "input", HasAdjacentButton: true, AdjacentButtonHasValidLabel: true, OuterHTML: "button only"},
		{Type: "input", HasAdjacentButton: true, HasHiddenLabel: true, OuterHTML: "empty button"},
	}
	got, err := NewRGAA11(model.ModeVirtual).CheckLabels(Collection[element.VirtualFormField]{Virtual: fields})
	if err != nil {
		t.Fatal(err)
	}
	var els []string
	for _, v := range got {
		els = append(els, v.Element)
	}
	if want := []string{"bare", "button only", "empty button"}; !equalStrings(els, want) {
		t.Errorf("elements = %v, want %v", els, want)
	}
}

func TestCheckLabelLinks_Virtual(t *testing.T) {
	fields := []element.VirtualFormField{
		{Type: "input", ID: strp("a"), HasLabelFor: true, LabelForID: "a", OuterHTML: "ok"},
		{Type: "input", ID: strp("a"), HasLabelFor: true, LabelForID: "b", OuterHTML: "mismatch"},
		{Type: "input", HasLabelFor: true, OuterHTML: "no id"},
		{Type: "input", HasLabelFor: true, LabelForID: "b", OuterHTML: "both"},
		{Type: "input", LabelForID: "b", OuterHTML: "no label"},
		{Type: "input", ID: strp("c"), OrphanLabelFor: "gone", OuterHTML: "orphan"},
		{Type: "input", OrphanLabelFor: "gone", OuterHTML: "orphan no id"},
	}
	got, err := NewRGAA11(model.ModeVirtual).CheckLabelLinks(Collection[element.VirtualFormField]{Virtual: fields})
	if err != nil {
		t.Fatal(err)
	}
	var pairs []string
	for _, v := range got {
		pairs = append(pairs, v.Element+": "+v.Message)
	}
	want := []string{
		"mismatch: " + labelMismatch.message,
		"no id: " + labelMissingID.message,
		"both: " + labelMismatch.message,
		"both: " + labelMissingID.message,
		"orphan: " + labelMismatch.message,
		"orphan no id: " + labelMismatch.message,
		"orphan no id: " + labelMissingID.message,
	}
	if !equalStrings(pairs, want) {
		t.Errorf("got %q\nwant %q", pairs, want)
	}
}

func TestCheckLabels_DOM(t *testing.T) {
	d := doc(t, `<form>
<label for="name">Name</label><input id="name">
<input id="anon">
<input id="q" aria-label="Search"><button>Go</button>
<label for="s" style="position:absolute;clip:rect(0,0,0,0)">Search</label><input id="s"><button aria-label="go"></button>
<input id="t"><button></button>
</form>`)
	got, err := NewRGAA11(model.ModeDOM).CheckLabels(Collection[element.VirtualFormField]{DOM: nodes(d, "input")})
	if err != nil {
		t.Fatal(err)
	}
	var els []string
	for _, v := range got {
		els = append(els, v.Element)
	}
	if want := []string{`<input id="anon"/>`, `<input id="t"/>`}; !equalStrings(els, want) {
		t.Errorf("elements = %v, want %v", els, want)
	}
}

func TestCheckLabels_StrayLabelDoesNotLabelFields(t *testing.T) {
	d := doc(t, `<form><label for="gone">Stray</label><input id="a"><input id="b"><input id="c"></form>`)
	fields := Collection[element.VirtualFormField]{DOM: nodes(d, "input")}
	r := NewRGAA11(model.ModeDOM)

	got, err := r.CheckLabels(fields)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d 11.1.1 violations, want 3: %v", len(got), got)
	}
	for _, v := range got {
		if v.Rule != RuleFieldLabel {
			t.Errorf("rule = %q, want %q", v.Rule, RuleFieldLabel)
		}
	}

	got, err = r.CheckLabelLinks(fields)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d 11.1.2 violations, want 3: %v", len(got), got)
	}
	for _, v := range got {
		if v.Message != labelMismatch.message {
			t.Errorf("message = %q, want %q", v.Message, labelMismatch.message)
		}
	}
}

// Semantically identical elements in both modes produce the same violations
// apart from the markup.
func TestModeParity(t *testing.T) {
	d := doc(t, `<img src="x"><img alt="ok"><area><svg role="img"></svg>
<a href="/p"></a><a href="/q" title="q"></a>
<input id="f"><input id="g" title="g">`)

	stripElement := func(vs []model.Violation) []model.Violation {
		out := make([]model.Violation, len(vs))
		for i, v := range vs {
			v.Element = ""
			out[i] = v
		}
		return out
	}
	same := func(name string, a, b []model.Violation) {
		a, b = stripElement(a), stripElement(b)
		if len(a) != len(b) {
			t.Errorf("%s: dom %v, virtual %v", name, a, b)
			return
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s[%d]: dom %+v, virtual %+v", name, i, a[i], b[i])
			}
		}
	}

	imgDOM, _ := NewRGAA1(model.ModeDOM).CheckImages(Collection[element.VirtualImage]{DOM: nodes(d, "img, area, svg")})
	imgVirt, _ := NewRGAA1(model.ModeVirtual).CheckImages(Collection[element.VirtualImage]{Virtual: []element.VirtualImage{
		{Type: "img"}, {Type: "img", Alt: strp("ok")}, {Type: "area"}, {Type: "svg", Role: strp("img")},
	}})
	same("images", imgDOM, imgVirt)

	linkDOM, _ := NewRGAA6(model.ModeDOM).CheckLinks(Collection[element.VirtualLink]{DOM: nodes(d, "a")})
	linkVirt, _ := NewRGAA6(model.ModeVirtual).CheckLinks(Collection[element.VirtualLink]{Virtual: []element.VirtualLink{
		{Href: strp("/p"), TextContent: strp("")}, {Href: strp("/q"), Title: strp("q")},
	}})
	same("links", linkDOM, linkVirt)

	fieldDOM, _ := NewRGAA11(model.ModeDOM).CheckLabels(Collection[element.VirtualFormField]{DOM: nodes(d, "input")})
	fieldVirt, _ := NewRGAA11(model.ModeVirtual).CheckLabels(Collection[element.VirtualFormField]{Virtual: []element.VirtualFormField{
		{Type: "input", ID: strp("f")}, {Type: "input", ID: strp("g"), Title: strp("g")},
	}})
	same("fields", fieldDOM, fieldVirt)

	fd := doc(t, `<iframe src="a"></iframe><iframe title=""></iframe><iframe title="Video player"></iframe><iframe title="Map"></iframe>`)
	frameVirt := Collection[element.VirtualFrame]{Virtual: []element.VirtualFrame{
		{}, {Title: strp("")}, {Title: strp("Video player")}, {Title: strp("Map")},
	}}
	r2d, r2v := NewRGAA2(model.ModeDOM), NewRGAA2(model.ModeVirtual)
	titleDOM, _ := r2d.CheckFrameTitles(Collection[element.VirtualFrame]{DOM: nodes(fd, "iframe")})
	titleVirt, _ := r2v.CheckFrameTitles(frameVirt)
	same("frame titles", titleDOM, titleVirt)
	relDOM, _ := r2d.CheckFrameTitleRelevance(Collection[element.VirtualFrame]{DOM: nodes(fd, "iframe")}, []string{"video"})
	relVirt, _ := r2v.CheckFrameTitleRelevance(frameVirt, []string{"video"})
	if len(relDOM) != 2 {
		t.Errorf("frame relevance: got %d violations, want 2", len(relDOM))
	}
	same("frame relevance", relDOM, relVirt)

	cd := doc(t, `<div id="bg1" style="background-color:#fff"><p id="fg1" style="color:rgb(200,200,200);font-size:12pt">low</p></div>
<div id="bg2" style="background:navy url(x.png)"><span id="fg2" style="color:white;font-weight:bold;font-size:1.5em">ok</span></div>`)
	contrastDOM, _ := NewRGAA3(model.ModeDOM).CheckContrasts(ContrastCollection{DOM: []element.DOMContrastPair{
		{Background: cd.Find("#bg1"), Foreground: cd.Find("#fg1")},
		{Background: cd.Find("#bg2"), Foreground: cd.Find("#fg2")},
	}})
	contrastVirt, _ := NewRGAA3(model.ModeVirtual).CheckContrasts(ContrastCollection{Virtual: []element.VirtualContrast{
		{BackgroundColor: "rgb(255, 255, 255)", TextColor: "rgb(200, 200, 200)", FontSize: "16px", FontWeight: "400"},
		{BackgroundColor: "rgb(0, 0, 128)", TextColor: "rgb(255, 255, 255)", FontSize: "24px", FontWeight: "700"},
	}})
	if got := rulesOf(contrastDOM); !equalStrings(got, []string{RuleContrastSmall}) {
		t.Errorf("contrast rules = %v", got)
	}
	same("contrast", contrastDOM, contrastVirt)

	hd := doc(t, `<h1>a</h1><h3>b</h3><div role="heading" aria-level="2">c</div><div role="heading">d</div>`)
	headDOM := Collection[element.VirtualHeading]{DOM: nodes(hd, "h1, h2, h3, h4, h5, h6, [role=heading]")}
	headVirt := Collection[element.VirtualHeading]{Virtual: []element.VirtualHeading{
		{TagName: "H1"}, {TagName: "H3"},
		{TagName: "DIV", Role: strp("heading"), AriaLevel: strp("2")},
		{TagName: "DIV", Role: strp("heading")},
	}}
	r9d, r9v := NewRGAA9(model.ModeDOM), NewRGAA9(model.ModeVirtual)
	hierDOM, _ := r9d.CheckHierarchy(headDOM)
	hierVirt, _ := r9v.CheckHierarchy(headVirt)
	if len(hierDOM) != 1 {
		t.Errorf("hierarchy: got %d violations, want 1", len(hierDOM))
	}
	same("hierarchy", hierDOM, hierVirt)
	structDOM, _ := r9d.CheckStructure(headDOM)
	structVirt, _ := r9v.CheckStructure(headVirt)
	if len(structDOM) != 1 {
		t.Errorf("structure: got %d violations, want 1", len(structDOM))
	}
	same("structure", structDOM, structVirt)

	good := doc(t, `<!DOCTYPE html><html lang="fr"><head><title>Home</title></head><body></body></html>`)
	bad := doc(t, `<html><head><title></title></head><body></body></html>`)
	docDOM := DocumentCollection{DOM: []element.DOMDocument{{Doc: good, URL: "https://ok"}, {Doc: bad, URL: "https://bad"}}}
	docVirt := DocumentCollection{Virtual: []element.VirtualDocument{
		{URL: "https://ok", HasDoctype: true, DoctypeFirst: true, Lang: "fr", Title: "Home"},
		{URL: "https://bad"},
	}}
	r8d, r8v := NewRGAA8(model.ModeDOM), NewRGAA8(model.ModeVirtual)
	checks := []struct {
		name     string
		dom, vir func(DocumentCollection) ([]model.Violation, error)
	}{
		{"doctype", r8d.CheckDoctype, r8v.CheckDoctype},
		{"lang", r8d.CheckLang, r8v.CheckLang},
		{"title", r8d.CheckTitle, r8v.CheckTitle},
	}
	for _, c := range checks {
		a, _ := c.dom(docDOM)
		b, _ := c.vir(docVirt)
		if len(a) == 0 {
			t.Errorf("%s: no violation for the bare document", c.name)
		}
		same(c.name, a, b)
	}

	sd := doc(t, `<form><label for="gone">Stray</label><input id="a"><input id="b"></form>`)
	strayVirt := Collection[element.VirtualFormField]{Virtual: []element.VirtualFormField{
		{Type: "input", ID: strp("a"), OrphanLabelFor: "gone"},
		{Type: "input", ID: strp("b"), OrphanLabelFor: "gone"},
	}}
	r11d, r11v := NewRGAA11(model.ModeDOM), NewRGAA11(model.ModeVirtual)
	strayDOM, _ := r11d.CheckLabels(Collection[element.VirtualFormField]{DOM: nodes(sd, "input")})
	strayV, _ := r11v.CheckLabels(strayVirt)
	same("stray label", strayDOM, strayV)
	linkedDOM, _ := r11d.CheckLabelLinks(Collection[element.VirtualFormField]{DOM: nodes(sd, "input")})
	linkedVirt, _ := r11v.CheckLabelLinks(strayVirt)
	if len(linkedDOM) != 2 {
		t.Errorf("stray label links: got %d violations, want 2", len(linkedDOM))
	}
	same("stray label links", linkedDOM, linkedVirt)
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 3abc", 3, true},
		{"-1", -1, true},
		{"+4", 4, true},
		{"", 0, false},
		{"x2", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLevel(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseLevel(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
