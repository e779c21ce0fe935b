package bot

import (
	"fmt"
	"strconv"
	"strings"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/service"
)

// parseDays reads "monday", "mon,wed,fri", "weekdays", "weekend" or "all".
func parseDays(raw string) ([]model.Day, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all", "week":
		return model.Days(), nil
	case "weekdays":
		return model.Days()[:5], nil
	case "weekend":
		return []model.Day{model.Saturday, model.Sunday}, nil
	}
	var days []model.Day
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		day, err := model.ParseDay(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", planner.ErrValidation, err)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no day given", planner.ErrValidation)
	}
	return days, nil
}

func parseDay(raw string) (model.Day, error) {
	day, err := model.ParseDay(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", planner.ErrValidation, err)
	}
	return day, nil
}

// parsePosition turns a 1-based "3" or "#3" into a 0-based index.
func parsePosition(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: task number %q must be a positive number", planner.ErrValidation, raw)
	}
	return value - 1, nil
}

func parsePositions(raw string) ([]int, error) {
	var indices []int
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		index, err := parsePosition(part)
		if err != nil {
			return nil, err
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// parseDayPosition reads "<day> <n>".
func parseDayPosition(args string) (model.Day, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: expected a day and a task number, e.g. monday 2", planner.ErrValidation)
	}
	day, err := parseDay(fields[0])
	if err != nil {
		return 0, 0, err
	}
	index, err := parsePosition(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return day, index, nil
}

// parseQuickTask reads "<day> <hours> <name...> [#color]".
func parseQuickTask(args string) (model.Day, service.TaskInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return 0, service.TaskInput{}, fmt.Errorf("%w: expected a day, hours and a name, e.g. monday 2 Write thesis", planner.ErrValidation)
	}
	day, err := parseDay(fields[0])
	if err != nil {
		return 0, service.TaskInput{}, err
	}
	hours, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, service.TaskInput{}, fmt.Errorf("%w: hours %q must be a number", planner.ErrValidation, fields[1])
	}
	nameFields := fields[2:]
	var color string
	if last := nameFields[len(nameFields)-1]; len(nameFields) > 1 && strings.HasPrefix(last, "#") {
		color = last
		nameFields = nameFields[:len(nameFields)-1]
	}
	return day, service.TaskInput{Name: strings.Join(nameFields, " "), Duration: hours, Color: color}, nil
}

// parseCopyArgs reads "<from> <to> [replace|append] [auto|keep|add] [1,2]".
func parseCopyArgs(args string) (service.CopyInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return service.CopyInput{}, fmt.Errorf("%w: expected a source day and target days, e.g. monday tue,wed", planner.ErrValidation)
	}
	source, err := parseDay(fields[0])
	if err != nil {
		return service.CopyInput{}, err
	}
	targets, err := parseDays(fields[1])
	if err != nil {
		return service.CopyInput{}, err
	}
	input := service.CopyInput{Source: source, Targets: targets}

	for _, field := range fields[2:] {
		if mode, err := planner.ParseCopyMode(field); err == nil {
			input.Mode = mode
			continue
		}
		if policy, err := planner.ParseHourPolicy(field); err == nil {
			input.Hours = policy
			continue
		}
		indices, err := parsePositions(field)
		if err != nil {
			return service.CopyInput{}, fmt.Errorf("%w: unknown copy option %q", planner.ErrValidation, field)
		}
		input.Indices = append(input.Indices, indices...)
	}
	return input, nil
}

func parseImportMode(raw string) (service.ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "merge":
		return service.ImportMerge, nil
	case "replace":
		return service.ImportReplace, nil
	default:
		return 0, fmt.Errorf("%w: import mode %q is not merge or replace", planner.ErrValidation, raw)
	}
}
