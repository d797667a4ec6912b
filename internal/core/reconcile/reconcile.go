// Package reconcile implements the single-threaded Reconciler of spec.md
// §4.4: the one goroutine that owns the entire entity tree, consuming
// filesystem events and key-input events from one queue, parsing basenames
// through the grammar package, and triggering the render/dispatch/action
// side effects that make the tree's state visible on the device. Grounded
// on the teacher's single-goroutine build-graph walker (one worker owning
// mutable state, fed by a channel, making every apparently-concurrent
// update actually sequential).
package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/config"
	"github.com/twidi/streamdeckfs-go/internal/adapters/fswatch"
	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/adapters/statefile"
	"github.com/twidi/streamdeckfs-go/internal/adapters/treedump"
	"github.com/twidi/streamdeckfs-go/internal/core/actions"
	"github.com/twidi/streamdeckfs-go/internal/core/device"
	"github.com/twidi/streamdeckfs-go/internal/core/dispatch"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/pagestate"
	"github.com/twidi/streamdeckfs-go/internal/core/render"
	"github.com/twidi/streamdeckfs-go/internal/core/scheduler"
	"github.com/twidi/streamdeckfs-go/internal/grammar"
)

// pending is one basename whose parse could not complete, parked until a
// variable or ref= dependency resolves. Per §4.4's waiting-dependency
// design, every parked basename is retried on any tree change rather than
// tracked against its precise missing name — simpler, and since retries
// are cheap idempotent re-parses, only ever a constant factor slower.
type pending struct {
	dir, name string
}

type keyEvent struct {
	index   int
	pressed bool
}

// Reconciler owns the Deck tree and drives every side effect against it.
// Exactly one goroutine (Run's caller) ever touches its state.
type Reconciler struct {
	deckDir string
	tree    *Tree
	cache   *grammar.Cache

	watcher *fswatch.Watcher
	sched   *scheduler.Scheduler
	comp    *render.Compositor
	writer  *render.Writer
	drv     device.Driver
	dispatcher *dispatch.Dispatcher
	runtime *actions.Runtime
	pages   *pagestate.Machine
	log     *logging.Logger

	keyEvents   chan keyEvent
	scrollTicks chan scrollTick
	pendingList []pending

	// scrollers and scrollOffsets are keyed by the text line's own path so
	// a deleted/replaced line's scroller can be found and stopped.
	scrollers     map[string]*render.Scroller
	scrollOffsets map[string]float64
}

type scrollTick struct {
	linePath string
	key      *entities.Key
	row, col int
	offset   float64
}

// Deps bundles every collaborator the reconciler drives. All fields are
// required.
type Deps struct {
	Watcher *fswatch.Watcher
	Sched   *scheduler.Scheduler
	Ras     render.Rasterizer
	Drv     device.Driver
	Log     *logging.Logger
	Daemon  config.Daemon
}

// New builds a Reconciler for one deck rooted at deckDir, wiring the
// render/dispatch/action sub-systems together.
func New(deckDir string, deck *entities.Deck, d Deps) *Reconciler {
	r := &Reconciler{
		deckDir:   deckDir,
		tree:      newTree(deck),
		cache:     grammar.NewCache(),
		watcher:   d.Watcher,
		sched:     d.Sched,
		comp:      render.NewCompositor(d.Ras),
		writer:    render.NewWriter(d.Drv, d.Ras, time.Duration(d.Daemon.ImageWriterDelayMS)*time.Millisecond),
		drv:       d.Drv,
		pages:     pagestate.New(),
		log:           d.Log,
		keyEvents:     make(chan keyEvent, 64),
		scrollTicks:   make(chan scrollTick, 64),
		scrollers:     make(map[string]*render.Scroller),
		scrollOffsets: make(map[string]float64),
	}
	r.runtime = actions.NewRuntime(d.Sched, d.Drv, d.Log, d.Daemon.LongpressDefaultMS)
	r.runtime.RequestPage = r.onPageRequest
	r.dispatcher = dispatch.New(deck.Rows, deck.Cols, dispatch.Handlers{
		KeyAt:         r.keyAt,
		RunPress:      r.runPress,
		RunLongpress:  r.runLongpress,
		RunRelease:    r.runRelease,
		ArmLongpress:  r.runtime.ArmLongpress,
	}, d.Log)
	d.Drv.SetKeyCallback(func(index int, pressed bool) {
		select {
		case r.keyEvents <- keyEvent{index: index, pressed: pressed}:
		default:
			d.Log.Warn("dropping key event: queue full", "index", index, "pressed", pressed)
		}
	})
	return r
}

// Run starts the watcher, the image writer, the scheduler, and the
// reconciler's own single-threaded loop. It blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	go r.watcher.Run(ctx)
	go r.writer.Run(ctx)
	go r.sched.Run(ctx)

	r.bootstrap()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.watcher.Events():
			if !ok {
				return
			}
			r.handleWatch(ev)
		case ke := <-r.keyEvents:
			r.dispatcher.HandleKey(ke.index, ke.pressed)
		case tick := <-r.scrollTicks:
			r.scrollOffsets[tick.linePath] = tick.offset
			r.renderKey(nil, tick.key, tick.row, tick.col)
		}
	}
}

// bootstrap installs the all-children watch on the deck root and performs
// the initial scan (treated internally as a burst of DirAdded/FileAdded
// events so it reuses the exact same install path as live changes).
func (r *Reconciler) bootstrap() {
	_ = r.watcher.SetMode(r.deckDir, fswatch.ModeAll)
	entries, err := readDir(r.deckDir)
	if err != nil {
		r.log.Error("initial scan failed", err, "dir", r.deckDir)
		return
	}
	for _, name := range entries {
		if statefile.IsReserved(name) || name == config.ModelFileName {
			continue
		}
		r.handleWatch(fswatch.Event{Kind: fswatch.FileAdded, Dir: r.deckDir, Name: name})
	}

	if _, ok := r.pages.Current(); !ok {
		if target, ok := r.resolveTarget("__first__"); ok {
			r.pages.PushOpaque(target)
			r.writeCurrentPage()
			r.renderVisible()
		}
	}
}

func (r *Reconciler) handleWatch(ev fswatch.Event) {
	switch ev.Kind {
	case fswatch.SelfRemoved:
		r.handleSelfRemoved(filepath.Join(ev.Dir, ev.Name))
	case fswatch.DirAdded, fswatch.FileAdded, fswatch.FileChanged:
		r.handleAddOrChange(ev.Dir, ev.Name)
	case fswatch.DirRemoved, fswatch.FileRemoved:
		r.handleRemoved(ev.Dir, ev.Name)
	}
	r.replayPending()
	if ev.Dir == r.deckDir {
		r.pollSetCurrentPage()
	}
	r.debugDumpTree(ev)
}

// debugDumpTree logs a TOON-encoded snapshot of the live tree after an
// event that may have changed it, only when `--verbose`/`-v` has raised the
// logger to debug (SPEC_FULL.md §A): the snapshot walk and encoding are
// skipped entirely otherwise.
func (r *Reconciler) debugDumpTree(ev fswatch.Event) {
	if !r.log.Enabled(logging.LevelDebug) {
		return
	}
	r.log.Debug("tree", "event", ev.Kind.String(), "toon", treedump.Dump(r.snapshot()))
}

func readDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
