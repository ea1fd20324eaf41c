// Package syncwatch notices writes made to the synchronized credential
// database by another instance of the application.
package syncwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce collapses the burst of events one SQLite commit produces
// (main file, -wal, -shm) into a single notification.
const defaultDebounce = 500 * time.Millisecond

// Watcher invokes onChange after files belonging to the watched database change.
type Watcher struct {
	dbPath   string
	onChange func(ctx context.Context)
	debounce time.Duration
	logger   *slog.Logger

	// Writes this process makes through a LocalStore. Events seen while one
	// is in flight, or within debounce of the last one finishing, are ours.
	localWrites atomic.Int32
	lastLocal   atomic.Int64
}

// New creates a Watcher for the database at dbPath.
func New(dbPath string, onChange func(ctx context.Context), logger *slog.Logger) *Watcher {
	return &Watcher{
		dbPath:   dbPath,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// Run watches until ctx is canceled. It returns an error only if the watch
// could not be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.dbPath)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching synced store", "path", w.dbPath)

	base := filepath.Base(w.dbPath)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)) {
				continue
			}
			if w.ownWrite() {
				continue
			}
			pending = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("synced store watch error", "error", err)
		case <-pending:
			pending = nil
			w.logger.Debug("synced store changed", "path", w.dbPath)
			w.onChange(ctx)
		}
	}
}

func (w *Watcher) beginLocalWrite() {
	w.localWrites.Add(1)
}

func (w *Watcher) endLocalWrite() {
	w.lastLocal.Store(time.Now().UnixNano())
	w.localWrites.Add(-1)
}

func (w *Watcher) ownWrite() bool {
	if w.localWrites.Load() > 0 {
		return true
	}
	last := w.lastLocal.Load()
	return last != 0 && time.Since(time.Unix(0, last)) < w.debounce
}
