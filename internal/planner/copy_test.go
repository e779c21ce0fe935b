package planner

import (
	"errors"
	"testing"

	"weekly-planner/internal/model"
)

func TestCopyReplaceAutoHours(t *testing.T) {
	w := NewWeek()
	orig := mustAdd(t, w, model.Monday, task("Write", 2), task("Read", 1))
	w.SetAllocatedHours(model.Tuesday, 8)
	mustAdd(t, w, model.Tuesday, task("Old", 1))

	selected, err := w.Select(model.Monday, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := w.Copy(CopyRequest{
		Tasks:   selected,
		Source:  model.Monday,
		Targets: []model.Day{model.Wednesday, model.Tuesday},
		Mode:    Replace,
		Hours:   AutoFromCopied,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Targets) != 2 || res.Targets[0] != model.Tuesday || res.Hours != 3 {
		t.Errorf("unexpected result %+v", res)
	}

	for _, day := range []model.Day{model.Tuesday, model.Wednesday} {
		tasks := w.Tasks(day)
		if len(tasks) != 2 || tasks[0].Name != "Write" || tasks[1].Name != "Read" {
			t.Errorf("%s: unexpected tasks %+v", day, tasks)
		}
		if got := w.AllocatedHours(day); got != 3 {
			t.Errorf("%s: expected allocation 3, got %d", day, got)
		}
		if tasks[0].ID == orig[0].ID {
			t.Errorf("%s: expected copies to get their own IDs", day)
		}
	}

	if _, err := w.DeleteTask(model.Tuesday, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.UpdateTask(model.Wednesday, 1, task("Read more", 2)); err != nil {
		t.Fatal(err)
	}
	if got := len(w.Tasks(model.Wednesday)); got != 2 {
		t.Errorf("expected Wednesday untouched by Tuesday's delete, got %d tasks", got)
	}
	mon := w.Tasks(model.Monday)
	if len(mon) != 2 || mon[1].Name != "Read" || mon[1].Duration != 1 {
		t.Errorf("expected Monday untouched, got %+v", mon)
	}
}

func TestCopyHourPolicies(t *testing.T) {
	tests := []struct {
		name   string
		mode   CopyMode
		policy HourPolicy
		want   int
		tasks  int
	}{
		{"replace auto", Replace, AutoFromCopied, 3, 2},
		{"append auto", Append, AutoFromCopied, 8, 3},
		{"replace keep", Replace, KeepExisting, 5, 2},
		{"append keep", Append, KeepExisting, 5, 3},
		{"replace add", Replace, AddToExisting, 8, 2},
		{"append add", Append, AddToExisting, 8, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWeek()
			mustAdd(t, w, model.Monday, task("Write", 2), task("Read", 1))
			w.SetAllocatedHours(model.Friday, 5)
			mustAdd(t, w, model.Friday, task("Existing", 1))

			selected, _ := w.Select(model.Monday, nil)
			_, err := w.Copy(CopyRequest{Tasks: selected, Source: model.Monday, Targets: []model.Day{model.Friday}, Mode: tt.mode, Hours: tt.policy})
			if err != nil {
				t.Fatal(err)
			}
			if got := w.AllocatedHours(model.Friday); got != tt.want {
				t.Errorf("expected allocation %d, got %d", tt.want, got)
			}
			if got := len(w.Tasks(model.Friday)); got != tt.tasks {
				t.Errorf("expected %d tasks, got %d", tt.tasks, got)
			}
		})
	}
}

func TestCopyAppendKeepsOrder(t *testing.T) {
	w := NewWeek()
	mustAdd(t, w, model.Monday, task("New", 1))
	mustAdd(t, w, model.Tuesday, task("Existing", 1))

	selected, _ := w.Select(model.Monday, []int{0})
	if _, err := w.Copy(CopyRequest{Tasks: selected, Source: model.Monday, Targets: []model.Day{model.Tuesday}, Mode: Append, Hours: KeepExisting}); err != nil {
		t.Fatal(err)
	}
	tasks := w.Tasks(model.Tuesday)
	if tasks[0].Name != "Existing" || tasks[1].Name != "New" {
		t.Errorf("expected copied task after existing ones, got %+v", tasks)
	}
}

func TestCopySkipsSourceAndDuplicates(t *testing.T) {
	w := NewWeek()
	mustAdd(t, w, model.Monday, task("Write", 2))
	selected, _ := w.Select(model.Monday, nil)

	res, err := w.Copy(CopyRequest{
		Tasks:   selected,
		Source:  model.Monday,
		Targets: []model.Day{model.Monday, model.Thursday, model.Thursday},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Targets) != 1 || res.Targets[0] != model.Thursday {
		t.Errorf("expected only Thursday, got %v", res.Targets)
	}
	if got := len(w.Tasks(model.Monday)); got != 1 {
		t.Errorf("expected source untouched, got %d tasks", got)
	}
	if got := len(w.Tasks(model.Thursday)); got != 1 {
		t.Errorf("expected one copy on Thursday, got %d", got)
	}
}

func TestCopyValidation(t *testing.T) {
	w := NewWeek()
	mustAdd(t, w, model.Monday, task("Write", 2))
	w.SetAllocatedHours(model.Tuesday, 23)
	selected, _ := w.Select(model.Monday, nil)

	tests := []struct {
		name string
		req  CopyRequest
	}{
		{"no tasks", CopyRequest{Source: model.Monday, Targets: []model.Day{model.Tuesday}}},
		{"only source", CopyRequest{Tasks: selected, Source: model.Monday, Targets: []model.Day{model.Monday}}},
		{"no targets", CopyRequest{Tasks: selected, Source: model.Monday}},
		{"allocation overflow", CopyRequest{Tasks: selected, Source: model.Monday, Targets: []model.Day{model.Wednesday, model.Tuesday}, Hours: AddToExisting}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Copy(tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(w.Tasks(model.Wednesday)) != 0 || len(w.Tasks(model.Tuesday)) != 0 {
				t.Error("expected no target to change")
			}
		})
	}

	if _, err := w.Select(model.Monday, []int{3}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found for a missing index, got %v", err)
	}
}

func TestParseCopyOptions(t *testing.T) {
	if m, err := ParseCopyMode("APPEND"); err != nil || m != Append {
		t.Errorf("expected append, got %v %v", m, err)
	}
	if m, err := ParseCopyMode(""); err != nil || m != Replace {
		t.Errorf("expected replace by default, got %v %v", m, err)
	}
	if _, err := ParseCopyMode("merge"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if p, err := ParseHourPolicy("add"); err != nil || p != AddToExisting {
		t.Errorf("expected add, got %v %v", p, err)
	}
	if p, err := ParseHourPolicy(""); err != nil || p != AutoFromCopied {
		t.Errorf("expected auto by default, got %v %v", p, err)
	}
}

func TestCopyKeepsTasksWithinScale(t *testing.T) {
	w := NewWeek()
	mustAdd(t, w, model.Monday, task("Deep work", 10))
	mustAdd(t, w, model.Tuesday, task("Read", 1))
	selected, _ := w.Select(model.Tuesday, nil)

	_, err := w.Copy(CopyRequest{Tasks: selected, Source: model.Tuesday, Targets: []model.Day{model.Wednesday}, Mode: Replace, Hours: AutoFromCopied})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected a 1h scale to be rejected, got %v", err)
	}
	if len(w.Tasks(model.Wednesday)) != 0 || w.AllocatedHours(model.Wednesday) != 0 {
		t.Error("expected Wednesday untouched")
	}

	w.SetAllocatedHours(model.Monday, 10)
	if _, err := w.Copy(CopyRequest{Tasks: selected, Source: model.Tuesday, Targets: []model.Day{model.Wednesday}, Mode: Replace, Hours: AutoFromCopied}); err != nil {
		t.Fatalf("expected copy to fit a 10h scale, got %v", err)
	}

	long, _ := w.Select(model.Monday, nil)
	if _, err := w.Copy(CopyRequest{Tasks: long, Source: model.Monday, Targets: []model.Day{model.Monday, model.Wednesday}, Mode: Replace, Hours: AutoFromCopied}); err != nil {
		t.Fatalf("expected the 10h task to fit a 10h scale, got %v", err)
	}
}
