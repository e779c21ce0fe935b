package service

import (
	"fmt"
	"strings"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
)

// TaskInput represents data required to create or edit a task.
// An empty Color means "use the suggested goal color".
type TaskInput struct {
	Name     string
	Duration int
	Color    string
}

// CopyInput selects tasks of Source by position (none = all) and where they go.
type CopyInput struct {
	Source  model.Day
	Indices []int
	Targets []model.Day
	Mode    planner.CopyMode
	Hours   planner.HourPolicy
}

// TaskService wraps task-related business logic on a session.
type TaskService struct{}

func NewTaskService() *TaskService {
	return &TaskService{}
}

// SuggestColor previews the color a task name would get without registering it.
func (s *TaskService) SuggestColor(session *planner.Session, name string) string {
	return session.Colors.Suggest(name)
}

func (s *TaskService) AddTask(session *planner.Session, day model.Day, input TaskInput) (model.Task, error) {
	task, err := s.resolve(session, input)
	if err != nil {
		return model.Task{}, err
	}
	stored, err := session.Week.AddTask(day, task)
	if err != nil {
		return model.Task{}, err
	}
	session.Colors.Remember(stored.Name, stored.Color)
	return stored, nil
}

// BeginEdit points the session's edit target at (day, index).
func (s *TaskService) BeginEdit(session *planner.Session, day model.Day, index int) (model.Task, error) {
	return session.Week.BeginEdit(day, index)
}

// BeginEditByID is BeginEdit for a task referenced by ID.
func (s *TaskService) BeginEditByID(session *planner.Session, id string) (model.Day, model.Task, error) {
	day, index, _, ok := session.Week.Find(id)
	if !ok {
		return 0, model.Task{}, fmt.Errorf("%w: task no longer exists", planner.ErrNotFound)
	}
	task, err := session.Week.BeginEdit(day, index)
	return day, task, err
}

// SubmitEdit applies input to the task being edited. Zero fields keep the current value.
func (s *TaskService) SubmitEdit(session *planner.Session, input TaskInput) (model.Task, error) {
	target, ok := session.Week.Editing()
	if !ok {
		return model.Task{}, fmt.Errorf("%w: no task is being edited", planner.ErrNotFound)
	}
	_, _, current, ok := session.Week.Find(target.TaskID)
	if !ok {
		session.Week.CancelEdit()
		return model.Task{}, fmt.Errorf("%w: task no longer exists", planner.ErrNotFound)
	}
	if strings.TrimSpace(input.Name) == "" {
		input.Name = current.Name
	}
	if input.Duration == 0 {
		input.Duration = current.Duration
	}
	if input.Color == "" {
		input.Color = current.Color
	}
	task, err := s.resolve(session, input)
	if err != nil {
		return model.Task{}, err
	}
	updated, err := session.Week.SubmitEdit(task)
	if err != nil {
		return model.Task{}, err
	}
	session.Colors.Remember(updated.Name, updated.Color)
	return updated, nil
}

func (s *TaskService) DeleteTask(session *planner.Session, day model.Day, index int) (model.Task, error) {
	return session.Week.DeleteTask(day, index)
}

func (s *TaskService) DeleteTaskByID(session *planner.Session, id string) (model.Day, model.Task, error) {
	return session.Week.DeleteByID(id)
}

// SetHours sets the same allocation on every day in days, or on none if any is invalid.
func (s *TaskService) SetHours(session *planner.Session, days []model.Day, hours int) error {
	if len(days) == 0 {
		return fmt.Errorf("%w: no day given", planner.ErrValidation)
	}
	return session.Week.SetHours(days, hours)
}

func (s *TaskService) Copy(session *planner.Session, input CopyInput) (planner.CopyResult, error) {
	tasks, err := session.Week.Select(input.Source, input.Indices)
	if err != nil {
		return planner.CopyResult{}, err
	}
	return session.Week.Copy(planner.CopyRequest{
		Tasks:   tasks,
		Source:  input.Source,
		Targets: input.Targets,
		Mode:    input.Mode,
		Hours:   input.Hours,
	})
}

func (s *TaskService) resolve(session *planner.Session, input TaskInput) (model.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Task{}, fmt.Errorf("%w: task name is required", planner.ErrValidation)
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = session.Colors.Suggest(name)
	}
	color, err := planner.ParseColor(color)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{Name: name, Duration: input.Duration, Color: color}, nil
}
