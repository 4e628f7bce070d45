package assessor

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/rules"
	"github.com/raysh454/rgaalint/internal/testutil"
)

func strp(s string) *string { return &s }

func newAssessor(t *testing.T, cfg *Config) (*Assessor, *testutil.DummyLogger) {
	t.Helper()
	logger := &testutil.DummyLogger{}
	a, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, logger
}

func virtualInput() Input {
	return Input{
		Mode: model.ModeVirtual,
		Documents: rules.DocumentCollection{Virtual: []element.VirtualDocument{
			{URL: "https://example.test/", HasDoctype: true, DoctypeFirst: true, Title: "Home"},
		}},
		Images: rules.Collection[element.VirtualImage]{Virtual: []element.VirtualImage{
			{Type: "img", OuterHTML: "<img a>"},
			{Type: "img", Alt: strp("ok"), OuterHTML: "<img ok>"},
			{Type: "img", OuterHTML: "<img b>"},
		}},
		Frames: rules.Collection[element.VirtualFrame]{Virtual: []element.VirtualFrame{
			{Title: strp("Video player"), OuterHTML: "<iframe>"},
		}},
		FormFields: rules.Collection[element.VirtualFormField]{Virtual: []element.VirtualFormField{
			{Type: "input", HasLabelFor: true, LabelForID: "x", OuterHTML: "<input>"},
		}},
		Headings: rules.Collection[element.VirtualHeading]{Virtual: []element.VirtualHeading{
			{TagName: "H1", OuterHTML: "<h1>"},
			{TagName: "H3", OuterHTML: "<h3>"},
		}},
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNilConfig) {
		t.Fatalf("err = %v, want ErrNilConfig", err)
	}
}

func TestRun_GroupsAndSorts(t *testing.T) {
	a, logger := newAssessor(t, &Config{})
	in := virtualInput()
	in.CustomBannedWords = []string{"video"}

	got, err := a.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"RGAA - 1.1.1", "RGAA - 2.2.1", "RGAA - 8.3", "RGAA - 9.1.1", "RGAA - 11.1.2"}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("keys = %v, want %v", got.Keys(), want)
	}
	imgs, _ := got.Get("RGAA - 1.1.1")
	if len(imgs) != 2 || imgs[0].Element != "<img a>" || imgs[1].Element != "<img b>" {
		t.Errorf("1.1.1 group = %+v", imgs)
	}
	if len(logger.Debugs) != 1 {
		t.Errorf("debug lines = %v", logger.Debugs)
	}
	if len(logger.Warns) != 0 {
		t.Errorf("unexpected warnings %v", logger.Warns)
	}
}

func TestRun_ConfigBannedWords(t *testing.T) {
	a, _ := newAssessor(t, &Config{BannedWords: []string{"player"}})
	got, err := a.Run(context.Background(), virtualInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := got.Get("RGAA - 2.2.1"); !ok {
		t.Errorf("config banned word not applied: %v", got.Keys())
	}
}

func TestRun_Idempotent(t *testing.T) {
	a, _ := newAssessor(t, &Config{})
	in := virtualInput()
	first, err := a.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := first.MarshalJSON()
	b2, _ := second.MarshalJSON()
	if string(b1) != string(b2) {
		t.Errorf("runs differ:\n%s\n%s", b1, b2)
	}
}

func TestRun_UnsupportedMode(t *testing.T) {
	a, _ := newAssessor(t, &Config{})
	in := virtualInput()
	in.Mode = "browser"
	got, err := a.Run(context.Background(), in)
	if !errors.Is(err, rules.ErrUnsupportedMode) {
		t.Fatalf("err = %v, want ErrUnsupportedMode", err)
	}
	if got != nil {
		t.Errorf("partial result returned: %v", got.Keys())
	}
}

func TestRun_CanceledContext(t *testing.T) {
	a, _ := newAssessor(t, &Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Run(ctx, virtualInput()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRun_DOM(t *testing.T) {
	body := `<!DOCTYPE html><html lang="en"><head><title>Shop</title></head><body>
<h1>Shop</h1><h2>Offers</h2>
<img src="a.png">
<iframe src="/v" title="iframe"></iframe>
<a href="/cart"></a>
<p style="color:#8A8AFF">Sale</p>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	sel := func(q string) []*goquery.Selection {
		var out []*goquery.Selection
		doc.Find(q).Each(func(_ int, s *goquery.Selection) { out = append(out, s) })
		return out
	}
	in := Input{
		Mode:      model.ModeDOM,
		Documents: rules.DocumentCollection{DOM: []element.DOMDocument{{Doc: doc, URL: "https://shop.test/"}}},
		Images:    rules.Collection[element.VirtualImage]{DOM: sel("img")},
		Frames:    rules.Collection[element.VirtualFrame]{DOM: sel("iframe")},
		Links:     rules.Collection[element.VirtualLink]{DOM: sel("a")},
		Headings:  rules.Collection[element.VirtualHeading]{DOM: sel("h1, h2")},
		Contrasts: rules.ContrastCollection{DOM: []element.DOMContrastPair{
			{Background: doc.Find("body"), Foreground: doc.Find("p")},
		}},
	}
	a, _ := newAssessor(t, &Config{})
	got, err := a.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"RGAA - 1.1.1", "RGAA - 2.2.1", "RGAA - 3.2.1", "RGAA - 6.2.1"}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("keys = %v, want %v", got.Keys(), want)
	}
}

func TestGroupViolations_CanonicalOrder(t *testing.T) {
	vs := []model.Violation{
		{Rule: "RGAA - 11.1.2", Element: "a"},
		{Rule: "RGAA - 2.1.1", Element: "b"},
		{Rule: "RGAA - 8.3", Element: "c"},
		{Rule: "RGAA - 11.1.2", Element: "d"},
	}
	got := GroupViolations(vs)
	if want := []string{"RGAA - 2.1.1", "RGAA - 8.3", "RGAA - 11.1.2"}; !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("keys = %v, want %v", got.Keys(), want)
	}
	g, _ := got.Get("RGAA - 11.1.2")
	if len(g) != 2 || g[0].Element != "a" || g[1].Element != "d" {
		t.Errorf("group order = %+v", g)
	}
	if GroupViolations(nil).Len() != 0 {
		t.Error("empty input produced keys")
	}
}

func TestSortRuleKeys(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"RGAA - 8.5", "RGAA - 8.1.3", "RGAA - 8.1.1", "RGAA - 8.3"}, []string{"RGAA - 8.1.1", "RGAA - 8.1.3", "RGAA - 8.3", "RGAA - 8.5"}},
		{[]string{"RGAA - 3", "RGAA - 3.0.0", "RGAA - 2.9"}, []string{"RGAA - 2.9", "RGAA - 3", "RGAA - 3.0.0"}},
		{[]string{"custom", "other"}, []string{"custom", "other"}},
		{[]string{"RGAA - 11.1.2", "X", "RGAA - 2.1.1"}, []string{"RGAA - 2.1.1", "X", "RGAA - 11.1.2"}},
		{[]string{"RGAA - 9.1", "RGAA - x.1", "RGAA - 8.3", "custom", "RGAA - 1.1.1"}, []string{"RGAA - 1.1.1", "RGAA - x.1", "RGAA - 8.3", "custom", "RGAA - 9.1"}},
	}
	for _, c := range cases {
		in := append([]string(nil), c.in...)
		if got := SortRuleKeys(in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SortRuleKeys(%v) = %v, want %v", c.in, got, c.want)
		}
		if !reflect.DeepEqual(in, c.in) {
			t.Errorf("input modified: %v", in)
		}
	}
}

func TestParseRuleKey(t *testing.T) {
	cases := []struct {
		in   string
		want []int
		ok   bool
	}{
		{"RGAA - 11.1.2", []int{11, 1, 2}, true},
		{"RGAA - 8.3", []int{8, 3}, true},
		{"A - B - 1.2", []int{1, 2}, true},
		{"RGAA 1.1", nil, false},
		{"RGAA - x.1", nil, false},
		{"RGAA - ", nil, false},
	}
	for _, c := range cases {
		got, ok := ParseRuleKey(c.in)
		if ok != c.ok || !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseRuleKey(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
