// Package fswatch maps filesystem inode events to the normalized watcher
// events of spec.md §4.3, using fsnotify as the inode event source —
// directly descended from the teacher's filesystem.FileWatcher, generalized
// from "watch .md/.d2 files, rebuild" to "watch directories, classify
// self/child events, emit to the reconciler queue".
//
// Mode is a pure function of the current model, per §4.3: `all` if the
// directory exists and has direct watchers or any child directory is
// currently "waiting"; `self-delete` if it exists but no child is waiting;
// otherwise `none`. The Watcher itself doesn't compute that function — it
// exposes SetMode so the Reconciler (the sole owner of the model) can drive
// subscriptions as entities are added and removed.
package fswatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Mode is one of the three subscription levels §4.3 defines for a directory.
type Mode int

const (
	// ModeNone means no subscription at all.
	ModeNone Mode = iota
	// ModeSelfDelete reacts only if the directory itself vanishes or is renamed.
	ModeSelfDelete
	// ModeAll adds creation/deletion/modification/rename of immediate children.
	ModeAll
)

// EventKind enumerates the normalized events §4.3 specifies.
type EventKind int

const (
	FileAdded EventKind = iota
	FileRemoved
	FileChanged
	DirAdded
	DirRemoved
	SelfRemoved
)

func (k EventKind) String() string {
	switch k {
	case FileAdded:
		return "file_added"
	case FileRemoved:
		return "file_removed"
	case FileChanged:
		return "file_changed"
	case DirAdded:
		return "dir_added"
	case DirRemoved:
		return "dir_removed"
	case SelfRemoved:
		return "self_removed"
	default:
		return "unknown"
	}
}

// Event carries one normalized occurrence. Dir is the concerned entity's
// parent directory (absolute path); Name is the child basename — both per
// §4.3's "every event carries the concerned entity's parent directory and
// the child name." For SelfRemoved, Dir/Name split the watched directory's
// own path the same way, so Dir is that directory's parent and Name is its
// own basename — join them to recover the removed path.
type Event struct {
	Kind EventKind
	Dir  string
	Name string
}

// Watcher wraps a single fsnotify.Watcher, tracking a mode per directory so
// Watch and Unwatch calls stay idempotent and cheap to issue repeatedly as
// the model changes.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event

	mu      sync.Mutex
	modes   map[string]Mode
	closed  bool
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a Watcher. Call Run to start its event loop and Close to tear
// it down.
func New() (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fswatch: %w", err)
	}
	return &Watcher{
		fs:     fs,
		events: make(chan Event, 64),
		modes:  make(map[string]Mode),
		doneCh: make(chan struct{}),
	}, nil
}

// Events returns the channel of normalized events. Closed when Close runs.
func (w *Watcher) Events() <-chan Event { return w.events }

// SetMode installs the watcher subscription for dir per §4.3's three
// levels. Transitioning to ModeNone drops the fsnotify subscription
// entirely; ModeSelfDelete and ModeAll both require watching dir itself
// (fsnotify does not distinguish levels below "watch this path"), so the
// Watcher filters child events out for ModeSelfDelete directories at
// dispatch time instead.
func (w *Watcher) SetMode(dir string, mode Mode) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	current, tracked := w.modes[dir]
	if mode == ModeNone {
		if tracked {
			_ = w.fs.Remove(dir)
			delete(w.modes, dir)
		}
		return nil
	}
	if tracked && current == mode {
		return nil
	}
	if !tracked {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("fswatch: add %s: %w", dir, err)
		}
	}
	w.modes[dir] = mode
	return nil
}

// Mode reports the currently installed subscription level for dir.
func (w *Watcher) Mode(dir string) Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modes[dir]
}

// Run starts the event-translation loop. It blocks until ctx is cancelled
// or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	w.wg.Add(1)
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.doneCh:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case <-w.fs.Errors:
			// Transport errors on the fsnotify side are not fatal to the
			// reconciler; a directory that fails to deliver further
			// events will simply surface as a stale subtree, consistent
			// with §7's "no error is propagated through an abort".
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	dir, name := filepath.Split(filepath.Clean(ev.Name))
	dir = filepath.Clean(dir)

	w.mu.Lock()
	mode, tracked := w.modes[ev.Name]
	parentMode := w.modes[dir]
	w.mu.Unlock()

	// Self-event: the watched directory itself was removed or renamed away.
	if tracked && (ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0) {
		_ = mode
		w.emit(Event{Kind: SelfRemoved, Dir: dir, Name: name})
		return
	}

	if parentMode != ModeAll {
		return
	}

	isDir := false
	if info, err := os.Stat(ev.Name); err == nil {
		isDir = info.IsDir()
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		if isDir {
			w.emit(Event{Kind: DirAdded, Dir: dir, Name: name})
		} else {
			w.emit(Event{Kind: FileAdded, Dir: dir, Name: name})
		}
	case ev.Op&fsnotify.Write != 0:
		w.emit(Event{Kind: FileChanged, Dir: dir, Name: name})
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename delivers as remove-at-old-name + create-at-new-name
		// from fsnotify's perspective; the reconciler treats a rename as
		// "add new version + remove old version" (§3), so surfacing the
		// removal half as FileRemoved/DirRemoved is sufficient here.
		if isDir {
			w.emit(Event{Kind: DirRemoved, Dir: dir, Name: name})
		} else {
			w.emit(Event{Kind: FileRemoved, Dir: dir, Name: name})
		}
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.doneCh:
	}
}

// Close stops the event loop and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.doneCh)
	err := w.fs.Close()
	w.wg.Wait()
	close(w.events)
	return err
}
