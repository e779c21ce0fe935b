package planner

import (
	"fmt"
	"time"
)

// Session is the whole state of one planner: the week, its goal colors and the
// saved templates. Callers serialize access; a Session is not safe for concurrent use.
type Session struct {
	Week      *Week
	Colors    *Colors
	Templates *Templates
}

func NewSession(palette []string, threshold float64) *Session {
	return &Session{
		Week:      NewWeek(),
		Colors:    NewColors(palette, threshold),
		Templates: NewTemplates(),
	}
}

// Snapshot captures the week together with the goal-color registry.
func (s *Session) Snapshot() Snapshot {
	snap := s.Week.Snapshot()
	snap.Goals = s.Colors.Goals()
	return snap
}

func (s *Session) SaveTemplate(name string, now time.Time) (Template, error) {
	return s.Templates.Save(name, s.Snapshot(), now)
}

// LoadTemplate replaces the week and goal colors with a copy of the named template.
func (s *Session) LoadTemplate(name string) (Template, error) {
	tpl, ok := s.Templates.Get(name)
	if !ok {
		return Template{}, fmt.Errorf("%w: template %q does not exist", ErrNotFound, name)
	}
	if err := s.Colors.Restore(tpl.Snapshot.Goals); err != nil {
		return Template{}, err
	}
	s.Week.Restore(tpl.Snapshot)
	return tpl, nil
}

// Reset clears tasks, allocations, goal colors and the edit target. Templates stay.
func (s *Session) Reset() {
	s.Week.Reset()
	s.Colors.Reset()
}
