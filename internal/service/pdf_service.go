package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
)

const (
	labelGrid = 2
	barGrid   = 10
)

// PDFService renders the week as a printable chart.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// Render draws a row per day with task blocks sized by duration against the
// week's scale, followed by a task table.
func (s *PDFService) Render(view planner.View, now time.Time) ([]byte, error) {
	m := pdf.NewMaroto(consts.Landscape, consts.A4)
	m.SetPageMargins(15, 10, 15)

	scale := view.MaxScale()
	m.Row(12, func() {
		m.Col(12, func() {
			m.Text("Weekly Schedule", props.Text{
				Top:   2,
				Style: consts.Bold,
				Align: consts.Center,
				Size:  16,
			})
		})
	})
	m.Row(8, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("%s · scale %dh", now.Format("2006-01-02"), scale), props.Text{
				Align: consts.Center,
				Size:  10,
			})
		})
	})

	for _, day := range model.Days() {
		tasks := view.Tasks(day)
		m.Row(10, func() {
			m.Col(labelGrid, func() {
				m.Text(fmt.Sprintf("%s  %s", day.Short(), pdfHours(view, day)), props.Text{
					Top:   3,
					Style: consts.Bold,
					Size:  9,
				})
			})
			durations := make([]int, len(tasks))
			for i, task := range tasks {
				durations[i] = task.Duration
			}
			widths, overflow := barLayout(durations, scale)
			used := uint(0)
			for i, width := range widths {
				task := tasks[i]
				used += width
				label := fmt.Sprintf("%s (%dh)", task.Name, task.Duration)
				m.SetBackgroundColor(parseRGB(task.Color))
				m.Col(width, func() {
					m.Text(label, props.Text{
						Top:   3,
						Size:  8,
						Align: consts.Center,
						Color: color.NewWhite(),
					})
				})
				m.SetBackgroundColor(color.NewWhite())
			}
			if overflow > 0 {
				hidden := len(tasks) - len(widths)
				m.SetBackgroundColor(color.Color{Red: 200, Green: 40, Blue: 40})
				m.Col(overflow, func() {
					m.Text(fmt.Sprintf("+%d more", hidden), props.Text{
						Top:   3,
						Size:  8,
						Align: consts.Center,
						Color: color.NewWhite(),
					})
				})
				m.SetBackgroundColor(color.NewWhite())
			} else if used < barGrid {
				m.ColSpace(barGrid - used)
			}
		})
	}

	headers := []string{"Day", "#", "Task", "Start", "Hours"}
	var rows [][]string
	for _, day := range model.Days() {
		offsets := view.StartOffsets(day)
		for i, task := range view.Tasks(day) {
			rows = append(rows, []string{
				day.String(),
				strconv.Itoa(i + 1),
				task.Name,
				fmt.Sprintf("%dh", offsets[i]),
				strconv.Itoa(task.Duration),
			})
		}
	}
	if len(rows) > 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Tasks", props.Text{Top: 4, Style: consts.Bold, Size: 12})
			})
		})
		m.TableList(headers, rows, props.TableList{
			HeaderProp: props.TableListContent{
				Size:      9,
				GridSizes: []uint{2, 1, 5, 2, 2},
			},
			ContentProp: props.TableListContent{
				Size:      9,
				GridSizes: []uint{2, 1, 5, 2, 2},
			},
			Align:                consts.Left,
			AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
			HeaderContentSpace:   1,
			Line:                 false,
		})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfHours(view planner.View, day model.Day) string {
	used, allocated := view.UsedHours(day), view.AllocatedHours(day)
	if allocated == 0 {
		return fmt.Sprintf("%dh", used)
	}
	if view.Overbooked(day) {
		return fmt.Sprintf("%d/%dh !", used, allocated)
	}
	return fmt.Sprintf("%d/%dh", used, allocated)
}

// barLayout sizes the blocks of one day. When they do not fit the grid, the tail
// collapses into a single overflow column of the returned width.
func barLayout(durations []int, scale int) ([]uint, uint) {
	widths := make([]uint, len(durations))
	total := uint(0)
	for i, hours := range durations {
		widths[i] = blockWidth(hours, scale)
		total += widths[i]
	}
	if total <= barGrid {
		return widths, 0
	}
	used := uint(0)
	kept := 0
	for _, width := range widths {
		if used+width > barGrid-1 {
			break
		}
		used += width
		kept++
	}
	return widths[:kept], barGrid - used
}

// blockWidth converts hours to grid columns out of barGrid, at least one column.
func blockWidth(hours, scale int) uint {
	if scale <= 0 {
		scale = planner.DefaultScale
	}
	width := int(math.Round(float64(hours) * barGrid / float64(scale)))
	if width < 1 {
		width = 1
	}
	return uint(width)
}

func parseRGB(hex string) color.Color {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return color.Color{Red: 70, Green: 130, Blue: 180}
	}
	return color.Color{
		Red:   int(value >> 16 & 0xff),
		Green: int(value >> 8 & 0xff),
		Blue:  int(value & 0xff),
	}
}
