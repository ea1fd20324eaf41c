package syncwatch

import (
	"context"

	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*LocalStore)(nil)

// LocalStore decorates the synced credential store so the Watcher skips the
// file events caused by this process's own writes.
type LocalStore struct {
	driven.CredentialStore
	watcher *Watcher
}

// Track wraps store. Every write through the returned store is treated as local.
func (w *Watcher) Track(store driven.CredentialStore) *LocalStore {
	return &LocalStore{CredentialStore: store, watcher: w}
}

func (s *LocalStore) Set(ctx context.Context, values map[string]string) error {
	s.watcher.beginLocalWrite()
	defer s.watcher.endLocalWrite()
	return s.CredentialStore.Set(ctx, values)
}

func (s *LocalStore) Remove(ctx context.Context, keys ...string) error {
	s.watcher.beginLocalWrite()
	defer s.watcher.endLocalWrite()
	return s.CredentialStore.Remove(ctx, keys...)
}

func (s *LocalStore) Clear(ctx context.Context) error {
	s.watcher.beginLocalWrite()
	defer s.watcher.endLocalWrite()
	return s.CredentialStore.Clear(ctx)
}
