// Package ports define the Fetcher interface for retrieving source bytes.
package ports

import (
	"context"
)

// Fetcher retrieves the bytes behind a source locator (network URL or local file).
//
// Failures match domain.ErrNetworkFailure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
