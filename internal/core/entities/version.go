package entities

import "sort"

// VersionSlot holds every parsed candidate sharing one (parent, identifier)
// pair, per §3's versioning rule: "the live version is the one with the
// most recent inode change time that is also not disabled". Adding a
// second file with the same identifier introduces a new version; removing
// one falls back to the previous.
type VersionSlot struct {
	// Candidates is kept sorted by CTime descending; index 0 is the
	// newest. Invariants hold only for the active candidate — inactive
	// ones stay parsed but inert (§3).
	Candidates []Entity
}

// Add inserts a candidate, keeping Candidates sorted newest-first. If a
// candidate with the same Path already exists (a re-parse after a content
// change, not a rename) it is replaced in place rather than duplicated.
func (s *VersionSlot) Add(e Entity) {
	for i, c := range s.Candidates {
		if c.Path() == e.Path() {
			s.Candidates[i] = e
			s.resort()
			return
		}
	}
	s.Candidates = append(s.Candidates, e)
	s.resort()
}

// Remove drops the candidate at the given path. It reports whether the
// removed candidate was the active one, so the caller knows whether
// deactivation/reactivation side effects are needed.
func (s *VersionSlot) Remove(path string) (wasActive bool) {
	activeBefore := s.Active()
	for i, c := range s.Candidates {
		if c.Path() == path {
			s.Candidates = append(s.Candidates[:i], s.Candidates[i+1:]...)
			break
		}
	}
	return activeBefore != nil && activeBefore.Path() == path
}

// Active returns the first non-disabled candidate (the newest by ctime),
// or nil if every candidate is disabled or none exist.
func (s *VersionSlot) Active() Entity {
	for _, c := range s.Candidates {
		if !c.Disabled() {
			return c
		}
	}
	return nil
}

// Empty reports whether the slot has no remaining candidates at all, in
// which case the parent should drop it.
func (s *VersionSlot) Empty() bool { return len(s.Candidates) == 0 }

func (s *VersionSlot) resort() {
	sort.SliceStable(s.Candidates, func(i, j int) bool {
		return s.Candidates[i].CTime().After(s.Candidates[j].CTime())
	})
}
