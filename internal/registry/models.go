package registry

import (
	"time"

	"github.com/raysh454/rgaalint/internal/model"
)

// Run is one stored audit: a single page or a whole site.
type Run struct {
	ID             string     `json:"id"`
	Target         string     `json:"target"`
	Mode           model.Mode `json:"mode"`
	CreatedAt      time.Time  `json:"created_at"`
	PageCount      int        `json:"page_count"`
	ViolationCount int        `json:"violation_count"`
}

// RunDetail is a run with its page results in audit order.
type RunDetail struct {
	Run
	Pages []model.PageResult `json:"pages"`
}

// Chunk is one changed span of a run diff. Each line of Content reads
// "<url> | <rule> | <element>".
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// RunDiff compares the violations of two runs. Added lines are new issues
// in head, removed lines are issues fixed since base.
type RunDiff struct {
	BaseID  string  `json:"base_id"`
	HeadID  string  `json:"head_id"`
	Added   int     `json:"added"`
	Removed int     `json:"removed"`
	Chunks  []Chunk `json:"chunks"`
}
