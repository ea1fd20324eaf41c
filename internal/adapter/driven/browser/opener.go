// Package browser implements the PageOpener port with the user's default browser.
package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cli/browser"

	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PageOpener = (*Opener)(nil)

func init() {
	// The launcher's own output would interleave with structured logs.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Opener launches pages in the system browser. The OS gives no handle to the
// resulting tab, so Close only records that the page is no longer needed.
type Opener struct {
	openURL func(url string) error
	logger  *slog.Logger
}

// NewOpener creates an Opener that uses the system default browser.
func NewOpener(logger *slog.Logger) *Opener {
	return &Opener{openURL: browser.OpenURL, logger: logger}
}

// Open launches url and returns it as the handle.
func (o *Opener) Open(_ context.Context, url string) (string, error) {
	if err := o.openURL(url); err != nil {
		return "", fmt.Errorf("open %s in browser: %w", url, err)
	}
	return url, nil
}

// Close cannot close a tab it does not own; it only logs the request.
func (o *Opener) Close(_ context.Context, handle string) error {
	o.logger.Debug("auth page no longer needed", "url", handle)
	return nil
}
