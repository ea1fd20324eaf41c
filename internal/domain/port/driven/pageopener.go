package driven

import "context"

// PageOpener opens and closes external pages (browser tabs) on behalf of the
// core. Close is best-effort; callers ignore its error.
type PageOpener interface {
	// Open shows url to the user and returns a handle for a later Close.
	Open(ctx context.Context, url string) (string, error)
	Close(ctx context.Context, handle string) error
}
