package model

import "strings"

// Task is a labeled, colored block of focus hours on a day.
type Task struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Color    string `json:"color"`
}

// Normalized returns the task with surrounding whitespace trimmed from text fields.
func (t Task) Normalized() Task {
	t.Name = strings.TrimSpace(t.Name)
	t.Color = strings.ToLower(strings.TrimSpace(t.Color))
	return t
}

// Goal is a task name remembered together with its display color.
type Goal struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
