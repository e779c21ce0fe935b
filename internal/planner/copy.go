package planner

import (
	"fmt"
	"sort"
	"strings"

	"weekly-planner/internal/model"
)

// CopyMode decides what happens to the tasks already on a target day.
type CopyMode int

const (
	Replace CopyMode = iota
	Append
)

func (m CopyMode) String() string {
	if m == Append {
		return "append"
	}
	return "replace"
}

// HourPolicy decides how a target day's allocation follows the copied tasks.
type HourPolicy int

const (
	// AutoFromCopied sets the allocation to the copied hours on Replace and adds them on Append.
	AutoFromCopied HourPolicy = iota
	KeepExisting
	AddToExisting
)

func (p HourPolicy) String() string {
	switch p {
	case KeepExisting:
		return "keep"
	case AddToExisting:
		return "add"
	default:
		return "auto"
	}
}

func ParseCopyMode(raw string) (CopyMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "replace":
		return Replace, nil
	case "append":
		return Append, nil
	default:
		return 0, fmt.Errorf("%w: copy mode %q is not replace or append", ErrValidation, raw)
	}
}

func ParseHourPolicy(raw string) (HourPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return AutoFromCopied, nil
	case "keep":
		return KeepExisting, nil
	case "add":
		return AddToExisting, nil
	default:
		return 0, fmt.Errorf("%w: hour policy %q is not auto, keep or add", ErrValidation, raw)
	}
}

// CopyRequest describes one propagation of tasks from a source day.
type CopyRequest struct {
	Tasks   []model.Task
	Source  model.Day
	Targets []model.Day
	Mode    CopyMode
	Hours   HourPolicy
}

// CopyResult lists the days that received tasks, in week order.
type CopyResult struct {
	Targets []model.Day
	Copied  int
	Hours   int
}

// Select returns the tasks at the given indices of day, in the given order.
// No indices selects the whole day.
func (w *Week) Select(day model.Day, indices []int) ([]model.Task, error) {
	if err := checkDay(day); err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return w.Tasks(day), nil
	}
	selected := make([]model.Task, 0, len(indices))
	for _, i := range indices {
		task, err := w.at(day, i)
		if err != nil {
			return nil, err
		}
		selected = append(selected, task)
	}
	return selected, nil
}

// Copy replicates req.Tasks onto every target day. The source day and repeated
// targets are skipped. Nothing changes unless the whole request is valid.
func (w *Week) Copy(req CopyRequest) (CopyResult, error) {
	if len(req.Tasks) == 0 {
		return CopyResult{}, fmt.Errorf("%w: no tasks selected to copy", ErrValidation)
	}
	if err := checkDay(req.Source); err != nil {
		return CopyResult{}, err
	}
	targets, err := copyTargets(req.Source, req.Targets)
	if err != nil {
		return CopyResult{}, err
	}

	sum := 0
	for _, task := range req.Tasks {
		if task.Duration < 1 {
			return CopyResult{}, fmt.Errorf("%w: task %q has no duration", ErrValidation, task.Name)
		}
		sum += task.Duration
	}

	hours := make(map[model.Day]int, len(targets))
	for _, day := range targets {
		next := w.hours[day]
		switch {
		case req.Hours == AddToExisting:
			next += sum
		case req.Hours == AutoFromCopied && req.Mode == Replace:
			next = sum
		case req.Hours == AutoFromCopied && req.Mode == Append:
			next += sum
		}
		if next > MaxAllocation {
			return CopyResult{}, fmt.Errorf("%w: %s would need %d focus hours, the limit is %d", ErrValidation, day, next, MaxAllocation)
		}
		hours[day] = next
	}

	projected := w.hours
	replaced := make(map[model.Day]bool, len(targets))
	for _, day := range targets {
		projected[day] = hours[day]
		replaced[day] = req.Mode == Replace
	}
	if err := w.fitsScale(projected, replaced, req.Tasks); err != nil {
		return CopyResult{}, err
	}

	for _, day := range targets {
		copies := make([]model.Task, 0, len(req.Tasks))
		for _, task := range req.Tasks {
			task.ID = w.newID()
			copies = append(copies, task)
		}
		if req.Mode == Append {
			w.tasks[day] = append(w.Tasks(day), copies...)
		} else {
			w.tasks[day] = copies
			if w.editing != nil && w.editing.Day == day {
				w.editing = nil
			}
		}
		w.hours[day] = hours[day]
	}

	return CopyResult{Targets: targets, Copied: len(req.Tasks), Hours: sum}, nil
}

func copyTargets(source model.Day, requested []model.Day) ([]model.Day, error) {
	seen := make(map[model.Day]bool, len(requested))
	targets := make([]model.Day, 0, len(requested))
	for _, day := range requested {
		if err := checkDay(day); err != nil {
			return nil, err
		}
		if day == source || seen[day] {
			continue
		}
		seen[day] = true
		targets = append(targets, day)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: pick at least one day other than %s", ErrValidation, source)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets, nil
}
