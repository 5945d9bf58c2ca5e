package routing

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// TableStore holds the live routing table and swaps it atomically on update.
// Readers always see either the previous table or the new one, never a
// partial mix.
type TableStore struct {
	table  atomic.Pointer[Table]
	logger *zap.Logger
}

// NewTableStore creates a store seeded with an initial table. A nil initial
// table is replaced with an empty one so Current never returns nil.
func NewTableStore(initial *Table, logger *zap.Logger) *TableStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial == nil {
		initial = &Table{}
	}
	s := &TableStore{logger: logger}
	s.table.Store(initial)
	return s
}

// Current returns the live table. The returned table must be treated as
// immutable.
func (s *TableStore) Current() *Table {
	return s.table.Load()
}

// Swap publishes a new table. Nil tables are rejected silently to keep the
// never-nil invariant.
func (s *TableStore) Swap(t *Table) {
	if t == nil {
		return
	}
	s.table.Store(t)
	s.logger.Info("routing table updated",
		zap.Int("rules", len(t.Rules)),
		zap.Int("default_routes", len(t.DefaultRoutes)),
		zap.Bool("global_override", t.GlobalOverride != ""))
}

// Watch reloads the table from path whenever the file changes, until ctx is
// cancelled. A file that fails to load or validate is logged and skipped;
// the previous table stays live. Watching the directory rather than the file
// survives editors that replace the file on save.
func (s *TableStore) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				table, err := LoadTable(path)
				if err != nil {
					s.logger.Warn("routing table reload failed, keeping previous table",
						zap.String("path", path),
						zap.Error(err))
					continue
				}
				s.Swap(table)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("routing table watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
