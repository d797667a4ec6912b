package actions

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/logging"
)

// processHandle tracks one spawned command for uniqueness (§4.9 step 6)
// and for stop-on-deactivation (§4.9 step 7).
type processHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
}

// processTable keys tracked processes by the spawning event's path, since
// §4.9 scopes both uniqueness and termination to "a process tree" per
// event, not per container.
type processTable struct {
	mu    sync.Mutex
	procs map[string]*processHandle
	log   *logging.Logger
}

func newProcessTable(log *logging.Logger) *processTable {
	return &processTable{procs: make(map[string]*processHandle), log: log}
}

// running reports whether eventPath has an in-flight process (§4.9 step 6).
func (t *processTable) running(eventPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.procs[eventPath]
	if !ok {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// launch starts cmd in its own process group (so terminate can signal the
// whole tree), registers it under eventPath, and returns once the command
// has started (not once it has exited).
func (t *processTable) launch(eventPath string, cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	h := &processHandle{cmd: cmd, done: make(chan struct{})}
	t.mu.Lock()
	t.procs[eventPath] = h
	t.mu.Unlock()

	go func() {
		err := cmd.Wait()
		if err != nil {
			t.log.Debug("subprocess exited", "event", eventPath, "error", err.Error())
		} else {
			t.log.Debug("subprocess exited", "event", eventPath, "code", 0)
		}
		close(h.done)
	}()
	return nil
}

// terminate implements §4.9 step 7 / §5's "SIGTERM with a 5s grace": send
// SIGTERM to the process group, then wait up to grace before giving up.
func (t *processTable) terminate(eventPath string, grace time.Duration) {
	t.mu.Lock()
	h, ok := t.procs[eventPath]
	t.mu.Unlock()
	if !ok {
		return
	}

	pgid, err := syscall.Getpgid(h.cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		_ = h.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-h.done:
	case <-time.After(grace):
		t.log.Warn("subprocess did not exit within grace period, abandoning", "event", eventPath)
	}
}

// runCommand is the shared subprocess-spawn path for mode=path/inside/command.
// It intentionally does not tie the child's lifetime to any caller context:
// §4.9's subprocess lifecycle ends only via the explicit stop-on-deactivation
// path (step 7), not when the triggering request scope ends.
func runCommand(name string, args []string, env []string, detach bool, table *processTable, eventPath string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(cmd.Env, env...)
	if detach {
		return cmd.Start()
	}
	return table.launch(eventPath, cmd)
}
