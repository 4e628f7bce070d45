package element

// The virtual records below are the plain-data descriptions of elements
// captured where no live DOM is available (server snapshots, headless
// extraction). Optional attributes are pointers: nil means "absent".

// VirtualImage describes an img, area or svg element.
type VirtualImage struct {
	Type           string  `json:"type"`
	Alt            *string `json:"alt,omitempty"`
	Title          *string `json:"title,omitempty"`
	AriaLabel      *string `json:"ariaLabel,omitempty"`
	AriaLabelledby *string `json:"ariaLabelledby,omitempty"`
	Role           *string `json:"role,omitempty"`
	OuterHTML      string  `json:"outerHTML"`
}

// View implements Viewer.
func (e VirtualImage) View(fallbackIndex int) View {
	v := View{Kind: imageKind(e.Type), TagName: e.Type, Markup: e.OuterHTML, Index: fallbackIndex}
	v.setOpt(AttrAlt, e.Alt)
	v.setOpt(AttrTitle, e.Title)
	v.setOpt(AttrAriaLabel, e.AriaLabel)
	v.setOpt(AttrAriaLabelledBy, e.AriaLabelledby)
	v.setOpt(AttrRole, e.Role)
	return v
}

func imageKind(t string) Kind {
	switch t {
	case "img", "image":
		return KindImage
	case "area":
		return KindArea
	case "svg":
		return KindSVG
	default:
		return KindOther
	}
}

// VirtualFrame describes a frame or iframe element.
type VirtualFrame struct {
	Type      string  `json:"type,omitempty"`
	Title     *string `json:"title,omitempty"`
	OuterHTML string  `json:"outerHTML"`
}

// View implements Viewer.
func (e VirtualFrame) View(fallbackIndex int) View {
	tag := e.Type
	if tag == "" {
		tag = "iframe"
	}
	v := View{Kind: KindFrame, TagName: tag, Markup: e.OuterHTML, Index: fallbackIndex}
	v.setOpt(AttrTitle, e.Title)
	return v
}

// VirtualLink describes an anchor or any element acting as a link.
type VirtualLink struct {
	Type           string  `json:"type,omitempty"`
	Href           *string `json:"href,omitempty"`
	TextContent    *string `json:"textContent,omitempty"`
	Title          *string `json:"title,omitempty"`
	AriaLabel      *string `json:"ariaLabel,omitempty"`
	AriaLabelledby *string `json:"ariaLabelledby,omitempty"`
	Role           *string `json:"role,omitempty"`
	OuterHTML      string  `json:"outerHTML"`
}

// View implements Viewer.
func (e VirtualLink) View(fallbackIndex int) View {
	v := View{Kind: KindLink, TagName: "a", Markup: e.OuterHTML, Index: fallbackIndex}
	if e.TextContent != nil {
		v.TextContent = *e.TextContent
	}
	v.setOpt(AttrHref, e.Href)
	v.setOpt(AttrTitle, e.Title)
	v.setOpt(AttrAriaLabel, e.AriaLabel)
	v.setOpt(AttrAriaLabelledBy, e.AriaLabelledby)
	v.setOpt(AttrRole, e.Role)
	return v
}

// VirtualHeading describes a native heading or an element with role="heading".
type VirtualHeading struct {
	Type        string  `json:"type,omitempty"`
	TagName     string  `json:"tagName"`
	TextContent *string `json:"textContent,omitempty"`
	Role        *string `json:"role,omitempty"`
	AriaLevel   *string `json:"ariaLevel,omitempty"`
	OuterHTML   string  `json:"outerHTML"`
	Index       *int    `json:"index,omitempty"`
}

// View implements Viewer. An explicit Index wins over the fallback.
func (e VirtualHeading) View(fallbackIndex int) View {
	idx := fallbackIndex
	if e.Index != nil {
		idx = *e.Index
	}
	v := View{Kind: KindHeading, TagName: e.TagName, Markup: e.OuterHTML, Index: idx}
	if e.TextContent != nil {
		v.TextContent = *e.TextContent
	}
	v.setOpt(AttrRole, e.Role)
	v.setOpt(AttrAriaLevel, e.AriaLevel)
	return v
}

// VirtualFormField describes an input, select or textarea together with the
// label structure around it, resolved wherever the record was captured.
type VirtualFormField struct {
	Type                        string  `json:"type"`
	ID                          *string `json:"id,omitempty"`
	AriaLabel                   *string `json:"ariaLabel,omitempty"`
	AriaLabelledby              *string `json:"ariaLabelledby,omitempty"`
	Title                       *string `json:"title,omitempty"`
	OuterHTML                   string  `json:"outerHTML"`
	HasLabelFor                 bool    `json:"hasLabelFor,omitempty"`
	LabelForID                  string  `json:"labelForId,omitempty"`
	OrphanLabelFor              string  `json:"orphanLabelFor,omitempty"`
	HasAdjacentButton           bool    `json:"hasAdjacentButton,omitempty"`
	AdjacentButtonHasValidLabel bool    `json:"adjacentButtonHasValidLabel,omitempty"`
	HasHiddenLabel              bool    `json:"hasHiddenLabel,omitempty"`
}

// View implements Viewer.
func (e VirtualFormField) View(fallbackIndex int) View {
	v := View{
		Kind:                        KindFormField,
		TagName:                     e.Type,
		Markup:                      e.OuterHTML,
		Index:                       fallbackIndex,
		HasLabelFor:                 e.HasLabelFor,
		LabelForID:                  e.LabelForID,
		OrphanLabelFor:              e.OrphanLabelFor,
		HasAdjacentButton:           e.HasAdjacentButton,
		AdjacentButtonHasValidLabel: e.AdjacentButtonHasValidLabel,
		HasHiddenLabel:              e.HasHiddenLabel,
	}
	v.setOpt(AttrID, e.ID)
	v.setOpt(AttrAriaLabel, e.AriaLabel)
	v.setOpt(AttrAriaLabelledBy, e.AriaLabelledby)
	v.setOpt(AttrTitle, e.Title)
	return v
}

// VirtualContrast is one text element with its computed colours.
type VirtualContrast struct {
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	OuterHTML       string `json:"outerHTML"`
}

// ContrastView converts the record.
func (e VirtualContrast) ContrastView() ContrastView {
	return ContrastView{
		BackgroundColor: e.BackgroundColor,
		TextColor:       e.TextColor,
		FontSize:        e.FontSize,
		FontWeight:      e.FontWeight,
		Markup:          e.OuterHTML,
	}
}

// VirtualDocument holds the document-level facts of a captured page.
type VirtualDocument struct {
	URL          string `json:"url"`
	HasDoctype   bool   `json:"hasDoctype"`
	DoctypeFirst bool   `json:"doctypeFirst"`
	Lang         string `json:"lang"`
	Title        string `json:"title"`
}

// DocumentView converts the record.
func (e VirtualDocument) DocumentView() DocumentView {
	return DocumentView{
		URL:          e.URL,
		HasDoctype:   e.HasDoctype,
		DoctypeFirst: e.DoctypeFirst,
		Lang:         e.Lang,
		Title:        e.Title,
	}
}
