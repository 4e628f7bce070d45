// Package element normalizes DOM nodes and virtual element descriptions into
// a single read-only View so that rule logic never branches on origin.
package element

import "strings"

// Kind is the element discriminant, decided once when a View is built.
type Kind string

const (
	KindImage     Kind = "img"
	KindArea      Kind = "area"
	KindSVG       Kind = "svg"
	KindFrame     Kind = "frame"
	KindLink      Kind = "link"
	KindHeading   Kind = "heading"
	KindFormField Kind = "formField"
	KindButton    Kind = "button"
	KindOther     Kind = "other"
)

// Attribute names read by the rule modules.
const (
	AttrAlt            = "alt"
	AttrTitle          = "title"
	AttrAriaLabel      = "aria-label"
	AttrAriaLabelledBy = "aria-labelledby"
	AttrAriaLevel      = "aria-level"
	AttrRole           = "role"
	AttrID             = "id"
	AttrHref           = "href"
	AttrFor            = "for"
	AttrStyle          = "style"
	AttrLang           = "lang"
)

// View is the common, origin-independent projection of an element.
// Attribute presence is tracked separately from value, so an empty title
// and a missing title stay distinguishable.
type View struct {
	Kind        Kind
	TagName     string
	TextContent string
	Markup      string
	Index       int

	// Form field hints, captured once at normalization time.
	HasLabelFor                 bool
	LabelForID                  string
	OrphanLabelFor              string // for of a same-form label whose target does not exist
	HasAdjacentButton           bool
	AdjacentButtonHasValidLabel bool
	HasHiddenLabel              bool

	attrs map[string]string
}

// Attr returns the attribute value and whether it is present.
func (v View) Attr(name string) (string, bool) {
	val, ok := v.attrs[strings.ToLower(name)]
	return val, ok
}

// Value returns the attribute value, or "" when absent.
func (v View) Value(name string) string {
	return v.attrs[strings.ToLower(name)]
}

// Has reports whether the attribute is present, even if empty.
func (v View) Has(name string) bool {
	_, ok := v.attrs[strings.ToLower(name)]
	return ok
}

func (v *View) set(name string, val string) {
	if v.attrs == nil {
		v.attrs = make(map[string]string)
	}
	v.attrs[strings.ToLower(name)] = val
}

// setOpt sets the attribute only when val is non-nil.
func (v *View) setOpt(name string, val *string) {
	if val != nil {
		v.set(name, *val)
	}
}

// Viewer is implemented by every virtual element record.
type Viewer interface {
	View(fallbackIndex int) View
}

// ContrastView carries the computed colours and font metrics of one
// background/foreground pair.
type ContrastView struct {
	BackgroundColor string
	TextColor       string
	FontSize        string
	FontWeight      string
	Markup          string
}

// DocumentView carries the document-level facts checked by the metadata rules.
type DocumentView struct {
	URL          string
	HasDoctype   bool
	DoctypeFirst bool
	Lang         string
	Title        string
}
