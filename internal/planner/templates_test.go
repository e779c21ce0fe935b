package planner

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"weekly-planner/internal/model"
)

var (
	savedAt    = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	exportedAt = time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
)

func sampleSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(nil, 0)
	s.Week.SetAllocatedHours(model.Monday, 4)
	s.Week.SetAllocatedHours(model.Tuesday, 2)
	for _, name := range []string{"Write thesis", "Gym"} {
		tk := task(name, 2)
		tk.Color = s.Colors.ColorFor(name)
		mustAdd(t, s.Week, model.Monday, tk)
	}
	return s
}

func TestSaveComputesTotals(t *testing.T) {
	s := sampleSession(t)
	tpl, err := s.SaveTemplate("  Busy week ", savedAt)
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "Busy week" {
		t.Errorf("expected trimmed name, got %q", tpl.Name)
	}
	if tpl.TotalTasks != 2 || tpl.TotalHours != 6 {
		t.Errorf("expected 2 tasks and 6 hours, got %d and %d", tpl.TotalTasks, tpl.TotalHours)
	}
	if !tpl.CreatedAt.Equal(savedAt) {
		t.Errorf("expected created at %v, got %v", savedAt, tpl.CreatedAt)
	}
	if _, err := s.SaveTemplate(" ", savedAt); !errors.Is(err, ErrValidation) {
		t.Errorf("expected empty name to be rejected, got %v", err)
	}
}

func TestSaveOverwritesByName(t *testing.T) {
	s := sampleSession(t)
	s.SaveTemplate("week", savedAt)
	s.Week.Reset()
	s.SaveTemplate("week", savedAt)

	if s.Templates.Len() != 1 {
		t.Fatalf("expected one template, got %d", s.Templates.Len())
	}
	tpl, _ := s.Templates.Get("week")
	if tpl.TotalTasks != 0 {
		t.Errorf("expected overwritten template to be empty, got %d tasks", tpl.TotalTasks)
	}
}

func TestLoadDoesNotAlias(t *testing.T) {
	s := sampleSession(t)
	if _, err := s.SaveTemplate("base", savedAt); err != nil {
		t.Fatal(err)
	}

	s.Week.AddTask(model.Monday, task("Extra", 1))
	s.Week.SetAllocatedHours(model.Monday, 10)
	s.Colors.ColorFor("Extra")

	if _, err := s.LoadTemplate("base"); err != nil {
		t.Fatal(err)
	}
	tasks := s.Week.Tasks(model.Monday)
	if len(tasks) != 2 || tasks[0].Name != "Write thesis" || tasks[1].Name != "Gym" {
		t.Fatalf("unexpected tasks after load %+v", tasks)
	}
	if tasks[0].ID == "" {
		t.Error("expected loaded tasks to get IDs")
	}
	if got := s.Week.AllocatedHours(model.Monday); got != 4 {
		t.Errorf("expected allocation 4, got %d", got)
	}
	if got := s.Colors.Len(); got != 2 {
		t.Errorf("expected 2 goals, got %d", got)
	}

	if _, err := s.Week.UpdateTask(model.Monday, 0, task("Changed", 1)); err != nil {
		t.Fatal(err)
	}
	s.Week.SetAllocatedHours(model.Tuesday, 0)
	s.Colors.Remember("Write thesis", "#000000")

	tpl, _ := s.Templates.Get("base")
	if got := tpl.Snapshot.Tasks[model.Monday][0].Name; got != "Write thesis" {
		t.Errorf("expected stored template untouched, got %q", got)
	}
	if tpl.Snapshot.Hours[model.Tuesday] != 2 {
		t.Errorf("expected stored Tuesday hours 2, got %d", tpl.Snapshot.Hours[model.Tuesday])
	}
	if tpl.Snapshot.Goals[0].Color == "#000000" {
		t.Error("expected stored goal colors untouched")
	}
}

func TestLoadAndDeleteMissing(t *testing.T) {
	s := NewSession(nil, 0)
	s.Week.AddTask(model.Monday, task("Keep", 1))

	if _, err := s.LoadTemplate("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
	if got := s.Week.TotalTasks(); got != 1 {
		t.Errorf("expected week untouched, got %d tasks", got)
	}
	if err := s.Templates.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := sampleSession(t)
	s.SaveTemplate("b-week", savedAt)
	s.Week.Reset()
	s.SaveTemplate("a-empty", savedAt.Add(time.Hour))

	first, err := s.Templates.Export(exportedAt)
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.Templates.ImportMerge(first)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 templates imported, got %d", n)
	}
	second, _ := s.Templates.Export(exportedAt)
	if !bytes.Equal(first, second) {
		t.Errorf("expected merge of own export to be a no-op\nbefore: %s\nafter:  %s", first, second)
	}

	other := NewTemplates()
	other.Save("stranger", Snapshot{}, savedAt)
	if _, err := other.ImportReplace(first); err != nil {
		t.Fatal(err)
	}
	third, _ := other.Export(exportedAt)
	if !bytes.Equal(first, third) {
		t.Errorf("expected replace to reproduce the exported set\nwant: %s\ngot:  %s", first, third)
	}
	if _, ok := other.Get("stranger"); ok {
		t.Error("expected replace to drop templates missing from the document")
	}
}

func TestExportDocumentShape(t *testing.T) {
	s := sampleSession(t)
	s.SaveTemplate("week", savedAt)
	data, _ := s.Templates.Export(exportedAt)
	doc := string(data)

	for _, want := range []string{
		`"format": "weekly-planner/templates"`,
		`"version": 1`,
		`"exported_at": "2026-03-03T18:00:00Z"`,
		`"Sunday": []`,
		`"total_tasks": 2`,
		`"total_focus_hours": 6`,
		`"goal_colors": [`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected export to contain %s", want)
		}
	}
}

func TestImportMergeKeepsOthers(t *testing.T) {
	src := NewTemplates()
	src.Save("shared", Snapshot{Hours: [model.DaysInWeek]int{3}}, savedAt)
	data, _ := src.Export(exportedAt)

	dst := NewTemplates()
	dst.Save("mine", Snapshot{}, savedAt)
	dst.Save("shared", Snapshot{}, savedAt)
	if _, err := dst.ImportMerge(data); err != nil {
		t.Fatal(err)
	}
	if got := dst.Names(); len(got) != 2 || got[0] != "mine" || got[1] != "shared" {
		t.Fatalf("unexpected names %v", got)
	}
	shared, _ := dst.Get("shared")
	if shared.TotalHours != 3 {
		t.Errorf("expected imported template to overwrite, got %d hours", shared.TotalHours)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{`},
		{"missing templates", `{"format":"weekly-planner/templates","version":1}`},
		{"wrong format", `{"format":"other","templates":{}}`},
		{"future version", `{"version":7,"templates":{}}`},
		{"unknown day", `{"templates":{"w":{"tasks":{"Funday":[]}}}}`},
		{"bad duration", `{"templates":{"w":{"tasks":{"Monday":[{"duration":0,"name":"x","color":"#000000"}]}}}}`},
		{"empty task name", `{"templates":{"w":{"tasks":{"Monday":[{"duration":1,"name":" ","color":"#000000"}]}}}}`},
		{"bad goal color", `{"templates":{"w":{"goal_colors":[{"name":"x","color":"red"}]}}}`},
		{"hours out of range", `{"templates":{"w":{"focus_hours":{"Monday":30}}}}`},
		{"focus day twice", `{"templates":{"w":{"focus_hours":{"Monday":3,"mon":4}}}}`},
		{"task day twice", `{"templates":{"w":{"tasks":{"Monday":[{"duration":1,"name":"a","color":"#000000"}],"mon":[{"duration":1,"name":"b","color":"#000000"}]}}}}`},
		{"name twice after trimming", `{"templates":{" a ":{},"a":{}}}`},
		{"task above default scale", `{"templates":{"w":{"tasks":{"Monday":[{"duration":13,"name":"x","color":"#000000"}]}}}}`},
		{"task above template scale", `{"templates":{"w":{"tasks":{"Monday":[{"duration":5,"name":"x","color":"#000000"}]},"focus_hours":{"Tuesday":4}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTemplates()
			r.Save("keep", Snapshot{}, savedAt)

			if _, err := r.ImportReplace([]byte(tt.doc)); !errors.Is(err, ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
			if _, err := r.ImportMerge([]byte(tt.doc)); !errors.Is(err, ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
			if names := r.Names(); len(names) != 1 || names[0] != "keep" {
				t.Errorf("expected repository untouched, got %v", names)
			}
		})
	}
}

func TestSessionReset(t *testing.T) {
	s := sampleSession(t)
	s.SaveTemplate("week", savedAt)
	s.Reset()

	if s.Week.TotalTasks() != 0 || s.Colors.Len() != 0 {
		t.Errorf("expected empty week and registry, got %d tasks and %d goals", s.Week.TotalTasks(), s.Colors.Len())
	}
	if s.Templates.Len() != 1 {
		t.Error("expected templates to survive a reset")
	}
}

func TestImportUsesTemplateScale(t *testing.T) {
	doc := `{"templates":{"long":{"tasks":{"Monday":[{"duration":18,"name":"Hackathon","color":"#000000"}]},"focus_hours":{"Sunday":20}}}}`
	r := NewTemplates()
	n, err := r.ImportMerge([]byte(doc))
	if err != nil || n != 1 {
		t.Fatalf("expected one template, got %d, %v", n, err)
	}
	snap, _ := r.Load("long")
	if got := snap.Tasks[model.Monday][0].Duration; got != 18 {
		t.Errorf("expected 18h task, got %d", got)
	}
}
