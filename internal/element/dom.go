package element

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Normalize projects either a DOM selection or a virtual record into a View.
// It never panics for a well-typed input; an unknown input yields a KindOther
// view with no attributes.
func Normalize(raw any, fallbackIndex int) View {
	switch el := raw.(type) {
	case *goquery.Selection:
		return FromSelection(el, fallbackIndex)
	case Viewer:
		return el.View(fallbackIndex)
	default:
		return View{Kind: KindOther, Index: fallbackIndex}
	}
}

// FromSelection snapshots the first node of sel. Attribute values, text and
// markup are copied at call time. For form fields the label structure around
// the node is resolved here as well (see formFieldHints).
func FromSelection(sel *goquery.Selection, fallbackIndex int) View {
	v := View{Kind: KindOther, Index: fallbackIndex}
	if sel == nil || sel.Length() == 0 {
		return v
	}
	sel = sel.First()
	node := sel.Get(0)
	if node.Type != html.ElementNode {
		return v
	}

	for _, a := range node.Attr {
		v.set(a.Key, a.Val)
	}
	v.TagName = tagName(node)
	v.Kind = kindOf(node, v.Value(AttrRole))
	v.TextContent = sel.Text()
	if markup, err := goquery.OuterHtml(sel); err == nil {
		v.Markup = markup
	}

	if v.Kind == KindFormField {
		formFieldHints(sel, &v)
	}
	return v
}

// FormFieldFromSelection builds a form-field View regardless of the tag,
// so custom widgets passed in as fields get their label structure resolved.
func FormFieldFromSelection(sel *goquery.Selection, fallbackIndex int) View {
	v := FromSelection(sel, fallbackIndex)
	if v.Kind == KindOther && len(v.attrs) == 0 && v.TagName == "" {
		return v
	}
	if v.Kind != KindFormField {
		v.Kind = KindFormField
		formFieldHints(sel.First(), &v)
	}
	return v
}

// tagName mirrors Element.tagName: upper-cased for HTML elements, as-is for
// foreign (SVG, MathML) elements.
func tagName(n *html.Node) string {
	if n.Namespace == "" {
		return strings.ToUpper(n.Data)
	}
	return n.Data
}

func kindOf(n *html.Node, role string) Kind {
	switch n.Data {
	case "img":
		return KindImage
	case "area":
		return KindArea
	case "svg":
		return KindSVG
	case "frame", "iframe":
		return KindFrame
	case "a":
		return KindLink
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return KindHeading
	case "input", "select", "textarea":
		return KindFormField
	case "button":
		return KindButton
	}
	switch role {
	case "heading":
		return KindHeading
	case "link":
		return KindLink
	}
	return KindOther
}

// rootOf returns a selection over the topmost ancestor of sel, i.e. the
// document node for parsed pages.
func rootOf(sel *goquery.Selection) *goquery.Selection {
	n := sel.Get(0)
	for n.Parent != nil {
		n = n.Parent
	}
	return goquery.NewDocumentFromNode(n).Selection
}

// labelsFor returns every label[for] under root whose for equals id.
func labelsFor(root *goquery.Selection, id string) *goquery.Selection {
	return root.Find("label[for]").FilterFunction(func(_ int, l *goquery.Selection) bool {
		f, _ := l.Attr(AttrFor)
		return f == id
	})
}

func hasElementWithID(root *goquery.Selection, id string) bool {
	found := false
	root.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr(AttrID); v == id {
			found = true
			return false
		}
		return true
	})
	return found
}

// formFieldHints resolves the label association, adjacent buttons and
// visually hidden labels of a form field.
func formFieldHints(sel *goquery.Selection, v *View) {
	root := rootOf(sel)
	id := v.Value(AttrID)

	if id != "" && labelsFor(root, id).Length() > 0 {
		v.HasLabelFor = true
		v.LabelForID = id
	}

	next, prev := sel.Next(), sel.Prev()
	v.HasAdjacentButton = isButton(next) || isButton(prev)
	v.AdjacentButtonHasValidLabel = buttonHasLabel(next) || buttonHasLabel(prev)

	if v.AdjacentButtonHasValidLabel && id != "" {
		labelsFor(root, id).Each(func(_ int, l *goquery.Selection) {
			style := InlineStyle(l)
			switch {
			case IsVisuallyHidden(style):
				v.HasHiddenLabel = true
			case style["display"] == "none" || style["visibility"] == "hidden":
				// hidden from assistive technologies too; not a label
			default:
				v.HasLabelFor = true
			}
		})
	}

	if v.HasLabelFor {
		return
	}

	// A label[for] in the same form pointing at an id that does not exist
	// anywhere is taken to reference this field. It only feeds the label/id
	// consistency check, the field is still unlabelled.
	form := sel.Closest("form")
	if form.Length() == 0 {
		return
	}
	form.Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		f, _ := l.Attr(AttrFor)
		if f == "" || f == id || hasElementWithID(root, f) {
			return true
		}
		v.OrphanLabelFor = f
		return false
	})
}

func isButton(s *goquery.Selection) bool {
	return s.Length() > 0 && goquery.NodeName(s) == "button"
}

func buttonHasLabel(s *goquery.Selection) bool {
	if !isButton(s) {
		return false
	}
	if v, _ := s.Attr(AttrAriaLabel); v != "" {
		return true
	}
	if v, _ := s.Attr(AttrAriaLabelledBy); v != "" {
		return true
	}
	if strings.TrimSpace(s.Text()) != "" {
		return true
	}
	v, _ := s.Attr(AttrTitle)
	return v != ""
}

// DOMContrastPair is a background element and the text element drawn on it.
type DOMContrastPair struct {
	Background *goquery.Selection
	Foreground *goquery.Selection
}

// ContrastView reads the computed colours and font metrics of the pair.
func (p DOMContrastPair) ContrastView() ContrastView {
	bg := StyleOf(p.Background)
	fg := StyleOf(p.Foreground)
	cv := ContrastView{
		BackgroundColor: bg.BackgroundColor,
		TextColor:       fg.Color,
		FontSize:        fg.FontSize,
		FontWeight:      fg.FontWeight,
	}
	if p.Foreground != nil && p.Foreground.Length() > 0 {
		if markup, err := goquery.OuterHtml(p.Foreground.First()); err == nil {
			cv.Markup = markup
		}
	}
	return cv
}

// DOMDocument is a parsed page together with its URI.
type DOMDocument struct {
	Doc *goquery.Document
	URL string
}

// DocumentFromGoquery reads the document facts of doc.
func DocumentFromGoquery(doc *goquery.Document, url string) DocumentView {
	return DOMDocument{Doc: doc, URL: url}.DocumentView()
}

// DocumentView reads the doctype position, root lang and title.
func (d DOMDocument) DocumentView() DocumentView {
	dv := DocumentView{URL: d.URL}
	if d.Doc == nil {
		return dv
	}
	if dv.URL == "" && d.Doc.Url != nil {
		dv.URL = d.Doc.Url.String()
	}

	var root *html.Node
	if len(d.Doc.Nodes) > 0 {
		root = d.Doc.Nodes[0]
	}
	if root != nil {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.DoctypeNode {
				dv.HasDoctype = true
				dv.DoctypeFirst = c == root.FirstChild
				break
			}
		}
	}

	dv.Lang, _ = d.Doc.Find("html").First().Attr(AttrLang)
	dv.Title = strings.Join(strings.Fields(d.Doc.Find("title").First().Text()), " ")
	return dv
}
