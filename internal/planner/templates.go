package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"weekly-planner/internal/model"
)

const (
	exportFormat  = "weekly-planner/templates"
	exportVersion = 1
)

// Template is a named snapshot with totals computed when it was saved.
type Template struct {
	Name       string
	Snapshot   Snapshot
	CreatedAt  time.Time
	TotalTasks int
	TotalHours int
}

// Templates is the template repository, keyed by name.
type Templates struct {
	items map[string]Template
}

func NewTemplates() *Templates {
	return &Templates{items: make(map[string]Template)}
}

// Save stores a copy of snap under name, replacing any template with that name.
func (r *Templates) Save(name string, snap Snapshot, now time.Time) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, fmt.Errorf("%w: template name is required", ErrValidation)
	}
	tpl := newTemplate(name, snap.Clone(), now)
	r.items[name] = tpl
	return cloneTemplate(tpl), nil
}

// Load returns a copy of the named snapshot.
func (r *Templates) Load(name string) (Snapshot, error) {
	tpl, ok := r.items[strings.TrimSpace(name)]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: template %q does not exist", ErrNotFound, name)
	}
	return tpl.Snapshot.Clone(), nil
}

func (r *Templates) Get(name string) (Template, bool) {
	tpl, ok := r.items[strings.TrimSpace(name)]
	if !ok {
		return Template{}, false
	}
	return cloneTemplate(tpl), true
}

func (r *Templates) Delete(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := r.items[name]; !ok {
		return fmt.Errorf("%w: template %q does not exist", ErrNotFound, name)
	}
	delete(r.items, name)
	return nil
}

// Names lists template names alphabetically.
func (r *Templates) Names() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Templates) Len() int {
	return len(r.items)
}

type exportDocument struct {
	Format     string                      `json:"format"`
	Version    int                         `json:"version"`
	ExportedAt time.Time                   `json:"exported_at"`
	Templates  map[string]templateDocument `json:"templates"`
}

type templateDocument struct {
	Tasks           map[string][]taskDocument `json:"tasks"`
	FocusHours      map[string]int            `json:"focus_hours"`
	GoalColors      []model.Goal              `json:"goal_colors"`
	CreatedAt       time.Time                 `json:"created_at"`
	TotalTasks      int                       `json:"total_tasks"`
	TotalFocusHours int                       `json:"total_focus_hours"`
}

type taskDocument struct {
	Duration int    `json:"duration"`
	Name     string `json:"name"`
	Color    string `json:"color"`
}

// Export serializes every template into a document ImportMerge and ImportReplace accept.
func (r *Templates) Export(now time.Time) ([]byte, error) {
	doc := exportDocument{
		Format:     exportFormat,
		Version:    exportVersion,
		ExportedAt: now.UTC().Truncate(time.Second),
		Templates:  make(map[string]templateDocument, len(r.items)),
	}
	for name, tpl := range r.items {
		doc.Templates[name] = encodeTemplate(tpl)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode templates: %w", err)
	}
	return data, nil
}

// ImportMerge adds or overwrites templates from data and returns how many were read.
func (r *Templates) ImportMerge(data []byte) (int, error) {
	decoded, err := decodeTemplates(data)
	if err != nil {
		return 0, err
	}
	for name, tpl := range decoded {
		r.items[name] = tpl
	}
	return len(decoded), nil
}

// ImportReplace discards every stored template and keeps only those in data.
func (r *Templates) ImportReplace(data []byte) (int, error) {
	decoded, err := decodeTemplates(data)
	if err != nil {
		return 0, err
	}
	r.items = decoded
	return len(decoded), nil
}

func newTemplate(name string, snap Snapshot, createdAt time.Time) Template {
	return Template{
		Name:       name,
		Snapshot:   snap,
		CreatedAt:  createdAt.UTC().Truncate(time.Second),
		TotalTasks: snap.TotalTasks(),
		TotalHours: snap.TotalHours(),
	}
}

func cloneTemplate(tpl Template) Template {
	tpl.Snapshot = tpl.Snapshot.Clone()
	return tpl
}

func encodeTemplate(tpl Template) templateDocument {
	doc := templateDocument{
		Tasks:           make(map[string][]taskDocument, model.DaysInWeek),
		FocusHours:      make(map[string]int, model.DaysInWeek),
		GoalColors:      append([]model.Goal{}, tpl.Snapshot.Goals...),
		CreatedAt:       tpl.CreatedAt,
		TotalTasks:      tpl.TotalTasks,
		TotalFocusHours: tpl.TotalHours,
	}
	for _, day := range model.Days() {
		tasks := make([]taskDocument, 0, len(tpl.Snapshot.Tasks[day]))
		for _, task := range tpl.Snapshot.Tasks[day] {
			tasks = append(tasks, taskDocument{Duration: task.Duration, Name: task.Name, Color: task.Color})
		}
		doc.Tasks[day.String()] = tasks
		doc.FocusHours[day.String()] = tpl.Snapshot.Hours[day]
	}
	return doc
}

func decodeTemplates(data []byte) (map[string]Template, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if doc.Format != "" && doc.Format != exportFormat {
		return nil, fmt.Errorf("%w: unexpected format %q", ErrFormat, doc.Format)
	}
	if doc.Version > exportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, doc.Version)
	}
	if doc.Templates == nil {
		return nil, fmt.Errorf("%w: document has no templates section", ErrFormat)
	}

	out := make(map[string]Template, len(doc.Templates))
	for rawName, tplDoc := range doc.Templates {
		name := strings.TrimSpace(rawName)
		if name == "" {
			return nil, fmt.Errorf("%w: template without a name", ErrFormat)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: template %q given twice", ErrFormat, name)
		}
		snap, err := decodeSnapshot(tplDoc)
		if err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrFormat, name, err)
		}
		out[name] = newTemplate(name, snap, tplDoc.CreatedAt)
	}
	return out, nil
}

func decodeSnapshot(doc templateDocument) (Snapshot, error) {
	var snap Snapshot
	seen := make(map[model.Day]bool, len(doc.FocusHours))
	for rawDay, hours := range doc.FocusHours {
		day, err := model.ParseDay(rawDay)
		if err != nil {
			return Snapshot{}, err
		}
		if seen[day] {
			return Snapshot{}, fmt.Errorf("focus hours for %s given twice", day)
		}
		seen[day] = true
		if hours < 0 || hours > MaxAllocation {
			return Snapshot{}, fmt.Errorf("%s focus hours %d out of range", day, hours)
		}
		snap.Hours[day] = hours
	}

	scale := scaleOf(snap.Hours)
	seen = make(map[model.Day]bool, len(doc.Tasks))
	for rawDay, tasks := range doc.Tasks {
		day, err := model.ParseDay(rawDay)
		if err != nil {
			return Snapshot{}, err
		}
		if seen[day] {
			return Snapshot{}, fmt.Errorf("tasks for %s given twice", day)
		}
		seen[day] = true
		for i, t := range tasks {
			task, err := decodeTask(t, scale)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%s task %d: %v", day, i+1, err)
			}
			snap.Tasks[day] = append(snap.Tasks[day], task)
		}
	}

	for _, goal := range doc.GoalColors {
		name := strings.TrimSpace(goal.Name)
		if name == "" {
			return Snapshot{}, fmt.Errorf("goal without a name")
		}
		color, err := ParseColor(goal.Color)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Goals = append(snap.Goals, model.Goal{Name: name, Color: color})
	}
	return snap, nil
}

func decodeTask(doc taskDocument, scale int) (model.Task, error) {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return model.Task{}, fmt.Errorf("name is empty")
	}
	if doc.Duration < 1 || doc.Duration > scale {
		return model.Task{}, fmt.Errorf("duration %d out of range 1..%d", doc.Duration, scale)
	}
	color, err := ParseColor(doc.Color)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{Name: name, Duration: doc.Duration, Color: color}, nil
}
