package framekit

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// DebugPanel is an on-screen view over a PropertyRegistry: a list of properties, one of them selected, that can be nudged
// up and down. Its visibility is an explicit flag; reading it is safe from any goroutine, while changes go through the
// RenderLoop's FrameQueue (see PanelToggleEvent and PanelVisibilityEvent).
type DebugPanel struct {
	Title    string
	registry *PropertyRegistry
	visible  atomic.Bool
	selected int
}

// NewDebugPanel creates a hidden DebugPanel over the given registry.
func NewDebugPanel(title string, registry *PropertyRegistry) *DebugPanel {
	return &DebugPanel{Title: title, registry: registry}
}

// Registry returns the panel's PropertyRegistry.
func (panel *DebugPanel) Registry() *PropertyRegistry {
	return panel.registry
}

// Visible returns whether the panel is shown.
func (panel *DebugPanel) Visible() bool {
	return panel.visible.Load()
}

// SetVisible shows or hides the panel.
func (panel *DebugPanel) SetVisible(visible bool) {
	panel.visible.Store(visible)
}

// Toggle flips the panel's visibility.
func (panel *DebugPanel) Toggle() {
	for {
		v := panel.visible.Load()
		if panel.visible.CompareAndSwap(v, !v) {
			return
		}
	}
}

// Selected returns the index of the selected property.
func (panel *DebugPanel) Selected() int {
	return panel.selected
}

// Select moves the selection by delta rows, wrapping around at either end.
func (panel *DebugPanel) Select(delta int) {
	count := panel.registry.Len()
	if count == 0 {
		panel.selected = 0
		return
	}
	panel.selected = ((panel.selected+delta)%count + count) % count
}

// Nudge edits the selected property by the given number of steps: numbers move by their step (or a hundredth of their range,
// or 0.1 for unbounded floats), bools flip on odd steps, and choices cycle. Colours aren't nudged.
// The edit is applied at the registry's next Flush.
func (panel *DebugPanel) Nudge(steps int) {

	descriptors := panel.registry.Descriptors()
	if len(descriptors) == 0 || steps == 0 {
		return
	}
	desc := descriptors[clamp(panel.selected, 0, len(descriptors)-1)]

	current, ok := panel.registry.Value(desc.Path)
	if !ok {
		return
	}

	switch desc.Kind {

	case PropertyFloat, PropertyInt:
		step := desc.Step
		if step == 0 {
			switch {
			case desc.Kind == PropertyInt:
				step = 1
			case desc.HasRange && desc.Max > desc.Min:
				step = (desc.Max - desc.Min) / 100
			default:
				step = 0.1
			}
		}
		value, _ := toFloat(current)
		panel.registry.Edit(desc.Path, value+float64(steps)*step)

	case PropertyBool:
		if steps%2 != 0 {
			panel.registry.Edit(desc.Path, !current.(bool))
		}

	case PropertyChoice:
		index := 0
		for i, c := range desc.Choices {
			if c == current {
				index = i
				break
			}
		}
		n := len(desc.Choices)
		panel.registry.Edit(desc.Path, desc.Choices[((index+steps)%n+n)%n])

	}

}

// Lines returns the panel's text, one line per property, with the selected one marked.
func (panel *DebugPanel) Lines() []string {

	descriptors := panel.registry.Descriptors()
	snapshot := panel.registry.Snapshot()

	lines := make([]string, 0, len(descriptors)+1)
	if panel.Title != "" {
		lines = append(lines, panel.Title)
	}

	for i, desc := range descriptors {
		marker := "  "
		if i == panel.selected {
			marker = "> "
		}
		lines = append(lines, marker+desc.Label+": "+FormatPropertyValue(snapshot[desc.Path]))
	}

	return lines

}

// FormatPropertyValue formats a property value for display.
func FormatPropertyValue(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	case Color:
		return v.String()
	case nil:
		return "-"
	}
	return fmt.Sprint(value)
}
