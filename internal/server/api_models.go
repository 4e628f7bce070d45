package server

// AuditHTMLRequest carries markup to audit in DOM mode.
type AuditHTMLRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// AuditURLRequest names a page or site to fetch and audit.
type AuditURLRequest struct {
	URL string `json:"url"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
