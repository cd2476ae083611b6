package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Change names a prefab or script that was edited on disk. Name is relative
// to the prefabs directory, e.g. "enemy_wraith.yaml" or "scripts/wraith.tengo".
type Change struct {
	Name   string
	Script bool
}

// Watcher reports prefab edits. Consumers drain Events between simulation
// steps; nothing here touches simulation state.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewWatcher watches Dir and Dir/scripts when they exist.
func NewWatcher() (*Watcher, error) {
	return NewWatcherFor(Dir, filepath.Join(Dir, "scripts"))
}

func NewWatcherFor(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	added := 0
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			continue
		}
		added++
	}
	if added == 0 && len(dirs) > 0 {
		_ = w.Close()
		return nil, &noDirsError{dirs: dirs}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		now:     time.Now,
	}
	go watcher.run()
	return watcher, nil
}

type noDirsError struct{ dirs []string }

func (e *noDirsError) Error() string {
	return "prefabs: nothing to watch in " + strings.Join(e.dirs, ", ")
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Drain returns every pending change without blocking, deduplicated.
func (w *Watcher) Drain() []Change {
	var out []Change
	seen := map[Change]struct{}{}
	for {
		select {
		case c := <-w.Events:
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			change, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := w.now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (Change, bool) {
	base := filepath.Base(path)
	switch {
	case isSpecFile(base):
		return Change{Name: base}, true
	case isScriptFile(base):
		return Change{Name: "scripts/" + base, Script: true}, true
	}
	return Change{}, false
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
