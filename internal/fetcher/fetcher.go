// Package fetcher retrieves web pages for the discovery engine.
package fetcher

import (
	"context"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

// Fetcher retrieves a single page. Implementations return an error for any
// failure mode (network error, non-2xx status, timeout); callers treat all
// failures identically as "no page".
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.PageContent, error)
}
