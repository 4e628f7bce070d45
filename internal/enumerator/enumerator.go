// Package enumerator discovers the pages of a site for multi-page audits.
package enumerator

import (
	"context"

	"github.com/raysh454/rgaalint/internal/utils"
)

// Enumerator lists the page URLs reachable from target.
type Enumerator interface {
	Enumerate(ctx context.Context, target string, cb utils.ProgressCallback) ([]string, error)
}
