package planner

import "weekly-planner/internal/model"

// Snapshot is a detached copy of a week and its goal colors.
// Tasks in a snapshot carry no IDs; they get fresh ones when restored.
type Snapshot struct {
	Tasks [model.DaysInWeek][]model.Task
	Hours [model.DaysInWeek]int
	Goals []model.Goal
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Hours: s.Hours, Goals: append([]model.Goal(nil), s.Goals...)}
	for i, list := range s.Tasks {
		if len(list) > 0 {
			out.Tasks[i] = append([]model.Task(nil), list...)
		}
	}
	return out
}

func (s Snapshot) TotalTasks() int {
	total := 0
	for _, list := range s.Tasks {
		total += len(list)
	}
	return total
}

func (s Snapshot) TotalHours() int {
	total := 0
	for _, hours := range s.Hours {
		total += hours
	}
	return total
}

// Snapshot copies the week's tasks and allocations.
func (w *Week) Snapshot() Snapshot {
	var snap Snapshot
	snap.Hours = w.hours
	for i, list := range w.tasks {
		if len(list) == 0 {
			continue
		}
		copies := make([]model.Task, len(list))
		for j, task := range list {
			task.ID = ""
			copies[j] = task
		}
		snap.Tasks[i] = copies
	}
	return snap
}

// Restore replaces the week's contents with snap. The edit target is cleared.
func (w *Week) Restore(snap Snapshot) {
	w.Reset()
	w.hours = snap.Hours
	for i, list := range snap.Tasks {
		if len(list) == 0 {
			continue
		}
		copies := make([]model.Task, len(list))
		for j, task := range list {
			task.ID = w.newID()
			copies[j] = task
		}
		w.tasks[i] = copies
	}
}
