package service

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
)

const (
	cellFree      = "▫️"
	iconOverbook  = "⚠️"
	iconOnTrack   = "🟢"
	iconUnplanned = "⚪"
)

// SummaryService renders the week as chat text. It only reads the view.
type SummaryService struct{}

func NewSummaryService() *SummaryService {
	return &SummaryService{}
}

// WeekChart draws one bar per day: a colored cell per task hour followed by
// free cells up to the day's allocation.
func (s *SummaryService) WeekChart(view planner.View) string {
	var builder strings.Builder
	builder.WriteString("📊 <b>Weekly schedule</b>\n")
	builder.WriteString(fmt.Sprintf("Scale: %dh\n\n", view.MaxScale()))

	totalUsed, totalAllocated := 0, 0
	for _, day := range model.Days() {
		used := view.UsedHours(day)
		allocated := view.AllocatedHours(day)
		totalUsed += used
		totalAllocated += allocated

		builder.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", dayIcon(view, day), day.Short(), hoursLabel(used, allocated)))
		builder.WriteString(bar(view, day))
		builder.WriteByte('\n')
		for i, task := range view.Tasks(day) {
			start := view.StartOffsets(day)[i]
			builder.WriteString(fmt.Sprintf("   %s %s <i>(%d–%dh)</i>\n", Swatch(task.Color), html.EscapeString(task.Name), start, start+task.Duration))
		}
	}

	builder.WriteString(fmt.Sprintf("\n∑ %s", hoursLabel(totalUsed, totalAllocated)))
	return builder.String()
}

// DayAgenda lists one day's tasks with their positions, for editing and reminders.
func (s *SummaryService) DayAgenda(view planner.View, day model.Day) string {
	var builder strings.Builder
	used := view.UsedHours(day)
	allocated := view.AllocatedHours(day)
	builder.WriteString(fmt.Sprintf("🗓 <b>%s</b> · %s\n", day, hoursLabel(used, allocated)))

	tasks := view.Tasks(day)
	if len(tasks) == 0 {
		builder.WriteString("🌿 nothing planned\n")
		return strings.TrimSpace(builder.String())
	}
	offsets := view.StartOffsets(day)
	for i, task := range tasks {
		builder.WriteString(fmt.Sprintf("%d. %s %s · %dh <i>(from %dh)</i>\n", i+1, Swatch(task.Color), html.EscapeString(task.Name), task.Duration, offsets[i]))
	}
	if view.Overbooked(day) {
		builder.WriteString(fmt.Sprintf("%s Overbooked by %dh\n", iconOverbook, used-allocated))
	}
	return strings.TrimSpace(builder.String())
}

// Goals lists the remembered goal colors.
func (s *SummaryService) Goals(goals []model.Goal) string {
	if len(goals) == 0 {
		return "🎨 No goal colors yet. They appear as you add tasks."
	}
	var builder strings.Builder
	builder.WriteString("🎨 <b>Goal colors</b>\n")
	for _, goal := range goals {
		builder.WriteString(fmt.Sprintf("%s %s <code>%s</code>\n", Swatch(goal.Color), html.EscapeString(goal.Name), goal.Color))
	}
	return strings.TrimSpace(builder.String())
}

// Templates lists saved templates with their totals.
func (s *SummaryService) Templates(templates []planner.Template) string {
	if len(templates) == 0 {
		return "💾 No templates saved. Use /save &lt;name&gt;."
	}
	var builder strings.Builder
	builder.WriteString("💾 <b>Templates</b>\n")
	for _, tpl := range templates {
		builder.WriteString(fmt.Sprintf("• <b>%s</b> · %d tasks · %dh · %s\n",
			html.EscapeString(tpl.Name), tpl.TotalTasks, tpl.TotalHours, tpl.CreatedAt.Format("2006-01-02 15:04")))
	}
	return strings.TrimSpace(builder.String())
}

func dayIcon(view planner.View, day model.Day) string {
	switch {
	case view.Overbooked(day):
		return iconOverbook
	case view.AllocatedHours(day) == 0 && view.UsedHours(day) == 0:
		return iconUnplanned
	default:
		return iconOnTrack
	}
}

func hoursLabel(used, allocated int) string {
	if allocated == 0 {
		return fmt.Sprintf("%dh planned", used)
	}
	remaining := allocated - used
	if remaining < 0 {
		return fmt.Sprintf("%d/%dh · <b>+%dh over</b>", used, allocated, -remaining)
	}
	return fmt.Sprintf("%d/%dh · %dh free", used, allocated, remaining)
}

func bar(view planner.View, day model.Day) string {
	var b strings.Builder
	b.WriteString("   ")
	for _, task := range view.Tasks(day) {
		swatch := Swatch(task.Color)
		for i := 0; i < task.Duration; i++ {
			b.WriteString(swatch)
		}
	}
	for i := view.UsedHours(day); i < view.AllocatedHours(day); i++ {
		b.WriteString(cellFree)
	}
	return b.String()
}

var swatches = []struct {
	emoji string
	hue   float64
}{
	{"🟥", 0},
	{"🟧", 30},
	{"🟨", 55},
	{"🟩", 120},
	{"🟦", 215},
	{"🟪", 280},
	{"🟥", 360},
}

// Swatch picks the colored square emoji closest to a #rrggbb color.
func Swatch(color string) string {
	value, err := strconv.ParseUint(strings.TrimPrefix(color, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(color, "#")) != 6 {
		return "⬜"
	}
	r := float64(value>>16&0xff) / 255
	g := float64(value>>8&0xff) / 255
	b := float64(value&0xff) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC
	lightness := (maxC + minC) / 2

	switch {
	case delta < 0.12 && lightness < 0.25:
		return "⬛"
	case delta < 0.12 && lightness > 0.75:
		return "⬜"
	case delta < 0.12:
		return "🔘"
	case lightness < 0.3 && r > b:
		return "🟫"
	}

	var hue float64
	switch maxC {
	case r:
		hue = math.Mod((g-b)/delta, 6) * 60
	case g:
		hue = ((b-r)/delta + 2) * 60
	default:
		hue = ((r-g)/delta + 4) * 60
	}
	if hue < 0 {
		hue += 360
	}

	best, bestDist := swatches[0].emoji, math.MaxFloat64
	for _, s := range swatches {
		if d := math.Abs(hue - s.hue); d < bestDist {
			best, bestDist = s.emoji, d
		}
	}
	return best
}
