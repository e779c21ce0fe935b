package planner

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"

	"weekly-planner/internal/model"
)

// DefaultThreshold is the word-overlap ratio at which two task names count as one goal.
const DefaultThreshold = 0.6

// DefaultPalette is cycled round-robin as new goals appear.
var DefaultPalette = []string{
	"#4682b4", // steel blue
	"#e4572e",
	"#29bf12",
	"#ffc914",
	"#8f2d56",
	"#17bebb",
	"#ff8c42",
	"#6a4c93",
	"#1982c4",
	"#8ac926",
}

// Colors is the goal-color registry. Lookup order is registration order.
type Colors struct {
	palette   []string
	threshold float64
	goals     []model.Goal
	index     map[string]int
}

// NewColors builds an empty registry. An empty palette falls back to DefaultPalette
// and a non-positive threshold to DefaultThreshold.
func NewColors(palette []string, threshold float64) *Colors {
	colors := make([]string, 0, len(palette))
	for _, raw := range palette {
		if color, err := ParseColor(raw); err == nil {
			colors = append(colors, color)
		}
	}
	if len(colors) == 0 {
		colors = append(colors, DefaultPalette...)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Colors{
		palette:   colors,
		threshold: threshold,
		index:     make(map[string]int),
	}
}

// ColorFor returns the color of the goal registered under name, else of the first
// registered goal matching it.
// Unmatched names get the next palette color and are registered.
func (c *Colors) ColorFor(name string) string {
	key := normalizeName(name)
	if key == "" {
		return c.palette[0]
	}
	if goal, ok := c.match(key); ok {
		return goal.Color
	}
	color := c.nextColor()
	c.put(strings.TrimSpace(name), key, color)
	return color
}

// Suggest is ColorFor without registration, for previews.
func (c *Colors) Suggest(name string) string {
	key := normalizeName(name)
	if key == "" {
		return c.palette[0]
	}
	if goal, ok := c.match(key); ok {
		return goal.Color
	}
	return c.nextColor()
}

// Remember records the final color chosen for a submitted task. An entry with the
// same normalized name is overwritten; a similar goal already holding that color
// is left alone; anything else becomes a new goal.
func (c *Colors) Remember(name, color string) {
	key := normalizeName(name)
	color, err := ParseColor(color)
	if key == "" || err != nil {
		return
	}
	if _, ok := c.index[key]; !ok {
		if goal, ok := c.match(key); ok && goal.Color == color {
			return
		}
	}
	c.put(strings.TrimSpace(name), key, color)
}

// Goals returns the registry in registration order.
func (c *Colors) Goals() []model.Goal {
	return append([]model.Goal(nil), c.goals...)
}

func (c *Colors) Len() int {
	return len(c.goals)
}

func (c *Colors) Palette() []string {
	return append([]string(nil), c.palette...)
}

// Restore replaces the registry with goals, keeping their order.
func (c *Colors) Restore(goals []model.Goal) error {
	for _, g := range goals {
		if normalizeName(g.Name) == "" {
			return fmt.Errorf("%w: goal name is empty", ErrValidation)
		}
		if _, err := ParseColor(g.Color); err != nil {
			return err
		}
	}
	c.Reset()
	for _, g := range goals {
		color, _ := ParseColor(g.Color)
		c.put(strings.TrimSpace(g.Name), normalizeName(g.Name), color)
	}
	return nil
}

func (c *Colors) Reset() {
	c.goals = nil
	c.index = make(map[string]int)
}

func (c *Colors) nextColor() string {
	return c.palette[len(c.goals)%len(c.palette)]
}

func (c *Colors) put(name, key, color string) {
	if i, ok := c.index[key]; ok {
		c.goals[i].Color = color
		return
	}
	c.index[key] = len(c.goals)
	c.goals = append(c.goals, model.Goal{Name: name, Color: color})
}

func (c *Colors) match(key string) (model.Goal, bool) {
	if i, ok := c.index[key]; ok {
		return c.goals[i], true
	}
	words := stemSet(key)
	for _, goal := range c.goals {
		other := normalizeName(goal.Name)
		if other == "" {
			continue
		}
		if strings.Contains(key, other) || strings.Contains(other, key) {
			return goal, true
		}
		if overlap(words, stemSet(other)) >= c.threshold {
			return goal, true
		}
	}
	return model.Goal{}, false
}

// normalizeName lowercases, drops punctuation and collapses whitespace.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stemSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(normalized) {
		stem := english.Stem(word, false)
		if stem == "" {
			stem = word
		}
		set[stem] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// ParseColor accepts "#rrggbb" or "rrggbb" in any case and returns "#rrggbb" lowercased.
func ParseColor(raw string) (string, error) {
	value := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if len(value) != 6 {
		return "", fmt.Errorf("%w: color %q must look like #4682b4", ErrValidation, raw)
	}
	for _, r := range value {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", fmt.Errorf("%w: color %q must look like #4682b4", ErrValidation, raw)
		}
	}
	return "#" + value, nil
}
