package builder

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skilltree/pkg/logger"
	"github.com/jingkaihe/skilltree/pkg/skills"
)

// debounceWindow coalesces the event bursts editors produce on save.
const debounceWindow = 200 * time.Millisecond

// Watch runs Generate once, then again whenever a skill document
// changes, until the context is cancelled. onRun receives the outcome
// of every regeneration. Watch operates on the real filesystem only;
// Config.Fs is ignored.
func Watch(ctx context.Context, cfg Config, onRun func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create filesystem watcher")
	}
	defer watcher.Close()

	addDirs := func() {
		_ = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				_ = watcher.Add(path)
			}
			return nil
		})
	}
	addDirs()

	res, runErr := Generate(ctx, cfg)
	onRun(res, runErr)

	debounce := time.NewTimer(debounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, cfg) {
				continue
			}
			if pending {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce.Reset(debounceWindow)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("filesystem watcher error")

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			addDirs() // pick up newly created skill directories
			res, runErr := Generate(ctx, cfg)
			onRun(res, runErr)
		}
	}
}

// relevant filters out the artifact write we cause ourselves and any
// event that cannot change the tree.
func relevant(event fsnotify.Event, cfg Config) bool {
	base := filepath.Base(event.Name)
	if base == cfg.artifact() {
		return false
	}
	if base == skills.SkillFileName {
		return true
	}
	// Directory creations and removals can add or drop whole skills.
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
