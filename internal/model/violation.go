package model

// Violation is one failure of one element against one rule.
// Element holds the serialized markup of the offending element, or the page
// URI for document-level rules.
type Violation struct {
	Element  string `json:"element"`
	Rule     string `json:"rule"`
	RuleLink string `json:"ruleLink"`
	Message  string `json:"message"`
}

// PageResult is the unit aggregated across pages for a site-wide report.
type PageResult struct {
	URL    string         `json:"url"`
	Result *RuleResultMap `json:"result"`
}
