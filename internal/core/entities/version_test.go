package entities

import (
	"testing"
	"time"
)

type fakeEntity struct {
	path     string
	ctime    time.Time
	disabled bool
}

func (f fakeEntity) Kind() Kind        { return KindLayer }
func (f fakeEntity) Path() string      { return f.path }
func (f fakeEntity) CTime() time.Time  { return f.ctime }
func (f fakeEntity) Disabled() bool    { return f.disabled }

func TestVersionSlot_ActivePicksNewestNonDisabled(t *testing.T) {
	base := time.Now()
	var slot VersionSlot
	slot.Add(fakeEntity{path: "/a", ctime: base, disabled: false})
	slot.Add(fakeEntity{path: "/b", ctime: base.Add(time.Second), disabled: true})

	active := slot.Active()
	if active == nil || active.Path() != "/a" {
		t.Fatalf("expected /a active (newest non-disabled), got %+v", active)
	}
}

func TestVersionSlot_RemoveFallsBackToPrevious(t *testing.T) {
	base := time.Now()
	var slot VersionSlot
	slot.Add(fakeEntity{path: "/old", ctime: base})
	slot.Add(fakeEntity{path: "/new", ctime: base.Add(time.Second)})

	if active := slot.Active(); active.Path() != "/new" {
		t.Fatalf("expected /new active, got %s", active.Path())
	}

	wasActive := slot.Remove("/new")
	if !wasActive {
		t.Fatal("expected Remove to report the removed candidate was active")
	}
	if active := slot.Active(); active.Path() != "/old" {
		t.Fatalf("expected fallback to /old, got %v", active)
	}
}

func TestVersionSlot_EmptyWhenAllRemoved(t *testing.T) {
	var slot VersionSlot
	slot.Add(fakeEntity{path: "/a", ctime: time.Now()})
	slot.Remove("/a")
	if !slot.Empty() {
		t.Fatal("expected Empty() after removing the only candidate")
	}
}

func TestVersionSlot_AllDisabledHasNoActive(t *testing.T) {
	var slot VersionSlot
	slot.Add(fakeEntity{path: "/a", ctime: time.Now(), disabled: true})
	if slot.Active() != nil {
		t.Fatal("expected no active version when every candidate is disabled")
	}
}
