package planner

import (
	"fmt"

	"github.com/google/uuid"

	"weekly-planner/internal/model"
)

const (
	// DefaultScale bounds durations while no day has an allocation.
	DefaultScale = 12
	// MaxAllocation is the largest budget a single day can hold.
	MaxAllocation = 24
)

// View is the read-only projection of a week used for rendering.
type View interface {
	Tasks(day model.Day) []model.Task
	StartOffsets(day model.Day) []int
	AllocatedHours(day model.Day) int
	UsedHours(day model.Day) int
	Overbooked(day model.Day) bool
	MaxScale() int
}

// EditTarget points at the task currently being edited.
type EditTarget struct {
	Day    model.Day
	Index  int
	TaskID string
}

// Week is the schedule store: ordered tasks and a focus-hour budget per day.
type Week struct {
	tasks   [model.DaysInWeek][]model.Task
	hours   [model.DaysInWeek]int
	editing *EditTarget
	newID   func() string
}

func NewWeek() *Week {
	return &Week{newID: uuid.NewString}
}

// AddTask appends task to day and returns the stored copy with its new ID.
func (w *Week) AddTask(day model.Day, task model.Task) (model.Task, error) {
	if err := checkDay(day); err != nil {
		return model.Task{}, err
	}
	task, err := w.validate(task)
	if err != nil {
		return model.Task{}, err
	}
	task.ID = w.newID()
	w.tasks[day] = append(w.tasks[day], task)
	return task, nil
}

// UpdateTask replaces the task at (day, index). When task carries an ID it must
// match the stored task, so a stale position never edits a different task.
func (w *Week) UpdateTask(day model.Day, index int, task model.Task) (model.Task, error) {
	current, err := w.at(day, index)
	if err != nil {
		return model.Task{}, err
	}
	if task.ID != "" && task.ID != current.ID {
		return model.Task{}, fmt.Errorf("%w: task %s #%d has changed", ErrNotFound, day, index+1)
	}
	task, err = w.validate(task)
	if err != nil {
		return model.Task{}, err
	}
	task.ID = current.ID
	w.tasks[day][index] = task
	return task, nil
}

// DeleteTask removes the task at (day, index). Later tasks shift down by one.
func (w *Week) DeleteTask(day model.Day, index int) (model.Task, error) {
	removed, err := w.at(day, index)
	if err != nil {
		return model.Task{}, err
	}
	list := w.tasks[day]
	w.tasks[day] = append(list[:index:index], list[index+1:]...)

	if w.editing != nil && w.editing.Day == day {
		switch {
		case w.editing.Index == index:
			w.editing = nil
		case w.editing.Index > index:
			w.editing.Index--
		}
	}
	return removed, nil
}

// Find locates a task by ID.
func (w *Week) Find(id string) (model.Day, int, model.Task, bool) {
	if id == "" {
		return 0, 0, model.Task{}, false
	}
	for _, day := range model.Days() {
		for i, task := range w.tasks[day] {
			if task.ID == id {
				return day, i, task, true
			}
		}
	}
	return 0, 0, model.Task{}, false
}

func (w *Week) UpdateByID(id string, task model.Task) (model.Task, error) {
	day, index, _, ok := w.Find(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: task no longer exists", ErrNotFound)
	}
	task.ID = id
	return w.UpdateTask(day, index, task)
}

func (w *Week) DeleteByID(id string) (model.Day, model.Task, error) {
	day, index, _, ok := w.Find(id)
	if !ok {
		return 0, model.Task{}, fmt.Errorf("%w: task no longer exists", ErrNotFound)
	}
	removed, err := w.DeleteTask(day, index)
	return day, removed, err
}

// BeginEdit marks the task at (day, index) as being edited, replacing any previous target.
func (w *Week) BeginEdit(day model.Day, index int) (model.Task, error) {
	task, err := w.at(day, index)
	if err != nil {
		return model.Task{}, err
	}
	w.editing = &EditTarget{Day: day, Index: index, TaskID: task.ID}
	return task, nil
}

func (w *Week) Editing() (EditTarget, bool) {
	if w.editing == nil {
		return EditTarget{}, false
	}
	return *w.editing, true
}

func (w *Week) CancelEdit() {
	w.editing = nil
}

// SubmitEdit applies task to the edit target and clears it.
func (w *Week) SubmitEdit(task model.Task) (model.Task, error) {
	if w.editing == nil {
		return model.Task{}, fmt.Errorf("%w: no task is being edited", ErrNotFound)
	}
	target := *w.editing
	task.ID = target.TaskID
	updated, err := w.UpdateTask(target.Day, target.Index, task)
	if err != nil {
		return model.Task{}, err
	}
	w.editing = nil
	return updated, nil
}

func (w *Week) SetAllocatedHours(day model.Day, hours int) error {
	return w.SetHours([]model.Day{day}, hours)
}

// SetHours gives every day in days the same allocation, or changes nothing when a
// day is unknown, hours are out of range or a task would outgrow the new scale.
func (w *Week) SetHours(days []model.Day, hours int) error {
	if hours < 0 || hours > MaxAllocation {
		return fmt.Errorf("%w: focus hours must be between 0 and %d", ErrValidation, MaxAllocation)
	}
	next := w.hours
	for _, day := range days {
		if err := checkDay(day); err != nil {
			return err
		}
		next[day] = hours
	}
	if err := w.fitsScale(next, nil, nil); err != nil {
		return err
	}
	w.hours = next
	return nil
}

func (w *Week) AllocatedHours(day model.Day) int {
	if !day.Valid() {
		return 0
	}
	return w.hours[day]
}

func (w *Week) UsedHours(day model.Day) int {
	if !day.Valid() {
		return 0
	}
	used := 0
	for _, task := range w.tasks[day] {
		used += task.Duration
	}
	return used
}

// Remaining is allocated minus used hours; negative values are the overbooked amount.
func (w *Week) Remaining(day model.Day) int {
	return w.AllocatedHours(day) - w.UsedHours(day)
}

// Overbooked reports used hours above the allocation. A zero allocation is unset
// and never overbooked.
func (w *Week) Overbooked(day model.Day) bool {
	allocated := w.AllocatedHours(day)
	return allocated > 0 && w.UsedHours(day) > allocated
}

// MaxScale is the largest allocation of the week, or DefaultScale when none is set.
func (w *Week) MaxScale() int {
	return scaleOf(w.hours)
}

func scaleOf(hours [model.DaysInWeek]int) int {
	scale := 0
	for _, h := range hours {
		if h > scale {
			scale = h
		}
	}
	if scale == 0 {
		return DefaultScale
	}
	return scale
}

// fitsScale checks that no task kept on a day outside replaced, and none of
// added, is longer than the scale of the given allocations.
func (w *Week) fitsScale(hours [model.DaysInWeek]int, replaced map[model.Day]bool, added []model.Task) error {
	scale := scaleOf(hours)
	for _, day := range model.Days() {
		if replaced[day] {
			continue
		}
		for _, task := range w.tasks[day] {
			if task.Duration > scale {
				return fmt.Errorf("%w: %q on %s runs %dh, longer than the %dh scale", ErrValidation, task.Name, day, task.Duration, scale)
			}
		}
	}
	for _, task := range added {
		if task.Duration > scale {
			return fmt.Errorf("%w: %q runs %dh, longer than the %dh scale", ErrValidation, task.Name, task.Duration, scale)
		}
	}
	return nil
}

// Tasks returns a copy of the day's tasks in order.
func (w *Week) Tasks(day model.Day) []model.Task {
	if !day.Valid() {
		return nil
	}
	return append([]model.Task(nil), w.tasks[day]...)
}

// StartOffsets returns the start hour of each task: the sum of the durations before it.
func (w *Week) StartOffsets(day model.Day) []int {
	if !day.Valid() {
		return nil
	}
	offsets := make([]int, len(w.tasks[day]))
	start := 0
	for i, task := range w.tasks[day] {
		offsets[i] = start
		start += task.Duration
	}
	return offsets
}

func (w *Week) TotalTasks() int {
	total := 0
	for _, list := range w.tasks {
		total += len(list)
	}
	return total
}

// TotalHours sums the allocations of all days.
func (w *Week) TotalHours() int {
	total := 0
	for _, hours := range w.hours {
		total += hours
	}
	return total
}

// Reset drops all tasks, allocations and the edit target.
func (w *Week) Reset() {
	w.tasks = [model.DaysInWeek][]model.Task{}
	w.hours = [model.DaysInWeek]int{}
	w.editing = nil
}

func (w *Week) at(day model.Day, index int) (model.Task, error) {
	if err := checkDay(day); err != nil {
		return model.Task{}, err
	}
	if index < 0 || index >= len(w.tasks[day]) {
		return model.Task{}, fmt.Errorf("%w: %s has no task #%d", ErrNotFound, day, index+1)
	}
	return w.tasks[day][index], nil
}

func (w *Week) validate(task model.Task) (model.Task, error) {
	task = task.Normalized()
	if task.Name == "" {
		return model.Task{}, fmt.Errorf("%w: task name is required", ErrValidation)
	}
	scale := w.MaxScale()
	if task.Duration < 1 || task.Duration > scale {
		return model.Task{}, fmt.Errorf("%w: duration must be between 1 and %d hours", ErrValidation, scale)
	}
	color, err := ParseColor(task.Color)
	if err != nil {
		return model.Task{}, err
	}
	task.Color = color
	return task, nil
}

func checkDay(day model.Day) error {
	if !day.Valid() {
		return fmt.Errorf("%w: unknown day %d", ErrValidation, int(day))
	}
	return nil
}
