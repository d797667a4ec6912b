package actions

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
	"github.com/twidi/streamdeckfs-go/internal/core/device"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/scheduler"
)

// PageRequest is what mode=page asks the owning deck to do; it mirrors the
// request codes of §4.7's transition table.
type PageRequest struct {
	Target  string // identifier, name, or one of __first__/__prev__/__next__/__back__
	Overlay bool
}

// Runtime executes the event pipeline of §4.9 against a scheduler, a device
// driver (for brightness), and a page-transition callback the reconciler
// supplies (since only the reconciler owns the page_history/entity tree).
type Runtime struct {
	sched *scheduler.Scheduler
	drv   device.Driver
	log   *logging.Logger
	procs *processTable

	// RequestPage is invoked for mode=page events; the reconciler applies
	// it against its pagestate.Machine and entity tree.
	RequestPage func(req PageRequest)

	defaultLongpressMS int
	reapGrace          time.Duration
	lastBrightness     int
}

// NewRuntime returns a Runtime. defaultLongpressMS is the duration-min
// fallback (§4.9 step 2's "300ms default").
func NewRuntime(sched *scheduler.Scheduler, drv device.Driver, log *logging.Logger, defaultLongpressMS int) *Runtime {
	return &Runtime{
		sched:              sched,
		drv:                drv,
		log:                log,
		procs:              newProcessTable(log),
		defaultLongpressMS: defaultLongpressMS,
		reapGrace:          5 * time.Second,
		lastBrightness:     100,
	}
}

// ArmLongpress satisfies dispatch.Handlers.ArmLongpress: starts the
// duration-min timer (§4.9 step 2), defaulting to 300ms.
func (r *Runtime) ArmLongpress(ev *entities.Event, fn func()) func() {
	ms := ev.Args.DurationMin
	if ms <= 0 {
		ms = r.defaultLongpressMS
	}
	tok := r.sched.Once(time.Now().Add(time.Duration(ms)*time.Millisecond), fn)
	return tok.Cancel
}

// Trigger runs the full pipeline of §4.9 steps 1, 3-7 for one event
// invocation (the longpress-arming guard of step 2 is handled by
// ArmLongpress/the dispatcher before Trigger is ever called for a
// longpress). released is a channel the caller closes when the
// triggering key is released, used for the duration-max guard (step 1) and
// to let repeaters stop.
func (r *Runtime) Trigger(ev *entities.Event, ctx entities.SDFSContext, released <-chan struct{}) {
	if ev.EventKind == entities.EventPress && ev.Args.DurationMax > 0 {
		r.guardedTrigger(ev, ctx, released)
		return
	}
	r.armAndRun(ev, ctx, released)
}

// guardedTrigger implements step 1: start a duration-max delayer; run the
// action only if the key is released before it fires, otherwise cancel.
func (r *Runtime) guardedTrigger(ev *entities.Event, ctx entities.SDFSContext, released <-chan struct{}) {
	deadline := time.Now().Add(time.Duration(ev.Args.DurationMax) * time.Millisecond)
	fired := make(chan struct{})
	tok := r.sched.Once(deadline, func() { close(fired) })

	go func() {
		select {
		case <-released:
			tok.Cancel()
			r.armAndRun(ev, ctx, released)
		case <-fired:
		}
	}()
}

// armAndRun implements steps 3-7: wait, run, repeat, uniqueness.
func (r *Runtime) armAndRun(ev *entities.Event, ctx entities.SDFSContext, released <-chan struct{}) {
	run := func() {
		if ev.Args.Unique && r.procs.running(ev.Path()) {
			return
		}
		if err := r.runOnce(ev, ctx); err != nil {
			r.log.Warn("action failed", "event", ev.Path(), "error", err.Error())
		}
	}

	start := func() {
		if ev.Repeatable() {
			r.scheduleRepeat(ev, run, released)
			return
		}
		run()
	}

	if ev.Args.Wait > 0 {
		r.sched.Once(time.Now().Add(time.Duration(ev.Args.Wait)*time.Millisecond), start)
		return
	}
	start()
}

// scheduleRepeat implements step 5: fire every `every` ms up to max-runs,
// stopping early if released fires first.
func (r *Runtime) scheduleRepeat(ev *entities.Event, run func(), released <-chan struct{}) {
	interval := time.Duration(ev.Args.Every) * time.Millisecond
	token := r.sched.Every(time.Now(), interval, ev.Args.MaxRuns, run)
	if released != nil {
		go func() {
			<-released
			token.Cancel()
		}()
	}
}

// runOnce dispatches step 4's Run to the mode-specific handler.
func (r *Runtime) runOnce(ev *entities.Event, ctx entities.SDFSContext) error {
	switch ev.Mode() {
	case entities.ModePage:
		return r.runPage(ev)
	case entities.ModeBrightness:
		return r.runBrightness(ev)
	case entities.ModeCommand:
		return r.runShell(ev, ctx, ev.Args.Command)
	case entities.ModeInside:
		return r.runInside(ev, ctx)
	default:
		return r.runPath(ev, ctx)
	}
}

func (r *Runtime) runPage(ev *entities.Event) error {
	if r.RequestPage == nil {
		return fmt.Errorf("actions: no page transition handler registered")
	}
	r.RequestPage(PageRequest{Target: ev.Args.Page, Overlay: ev.Args.Overlay})
	return nil
}

// runBrightness implements mode=brightness (§4.9 step 4). Relative specs
// (`+N`/`-N`) are resolved against lastBrightness, the last value this
// Runtime applied; it starts at 100 and nothing outside runBrightness
// updates it.
func (r *Runtime) runBrightness(ev *entities.Event) error {
	spec := strings.TrimSpace(ev.Args.Brightness)
	if spec == "" {
		return fmt.Errorf("actions: empty brightness spec")
	}
	n, delta, err := parseBrightnessSpec(spec)
	if err != nil {
		return fmt.Errorf("actions: invalid brightness spec %q: %w", spec, err)
	}
	target := n
	if delta {
		target = r.lastBrightness + n
	}
	target = clampPercent(target)
	if err := r.drv.SetBrightness(context.Background(), target); err != nil {
		return err
	}
	r.lastBrightness = target
	return nil
}

func parseBrightnessSpec(spec string) (value int, delta bool, err error) {
	if strings.HasPrefix(spec, "+") || strings.HasPrefix(spec, "-") {
		v, e := strconv.Atoi(spec)
		return v, true, e
	}
	v, e := strconv.Atoi(strings.TrimPrefix(spec, "="))
	return v, false, e
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func (r *Runtime) runPath(ev *entities.Event, ctx entities.SDFSContext) error {
	path := ev.Path()
	if ev.Args.File != "" && ev.Args.File != "__inside__" {
		path = ev.Args.File
	}
	return runCommand(path, nil, ctx.Environ(), ev.Args.Detach, r.procs, ev.Path())
}

func (r *Runtime) runInside(ev *entities.Event, ctx entities.SDFSContext) error {
	first, err := firstLine(ev.Path())
	if err != nil {
		return err
	}
	return r.runShell(ev, ctx, first)
}

func (r *Runtime) runShell(ev *entities.Event, ctx entities.SDFSContext, command string) error {
	return runCommand("/bin/sh", []string{"-c", command}, ctx.Environ(), ev.Args.Detach, r.procs, ev.Path())
}

func firstLine(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}

// DeactivateStart terminates a tracked `start` event's process tree, per
// §4.9 step 7 / "a page leaves the visible stack → ... any tracked
// subprocess of start is terminated".
func (r *Runtime) DeactivateStart(ev *entities.Event) {
	if ev.Args.Detach {
		return
	}
	r.procs.terminate(ev.Path(), r.reapGrace)
}
