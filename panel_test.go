package framekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPanel(t *testing.T) (*DebugPanel, *float64, *bool, *string) {

	reg := NewPropertyRegistry(nil)
	speed, visible, mode := 1.0, true, "solid"
	require.NoError(t, reg.BindFloatVar("speed", &speed, WithRange(0, 2), WithLabel("Speed")))
	require.NoError(t, reg.BindBool("visible", func() bool { return visible }, func(v bool) { visible = v }))
	require.NoError(t, reg.BindChoice("mode", []string{"solid", "wire", "depth"}, func() string { return mode }, func(v string) { mode = v }))

	return NewDebugPanel("Debug", reg), &speed, &visible, &mode

}

func TestPanelSelectWraps(t *testing.T) {

	panel, _, _, _ := newTestPanel(t)

	assert.Equal(t, 0, panel.Selected())
	panel.Select(-1)
	assert.Equal(t, 2, panel.Selected())
	panel.Select(4)
	assert.Equal(t, 0, panel.Selected())

	empty := NewDebugPanel("", NewPropertyRegistry(nil))
	empty.Select(3)
	assert.Equal(t, 0, empty.Selected())
	empty.Nudge(1)

}

func TestPanelNudge(t *testing.T) {

	panel, speed, visible, mode := newTestPanel(t)
	reg := panel.Registry()

	panel.Nudge(5)
	reg.Flush()
	assert.InDelta(t, 1.1, *speed, 1e-12, "a hundredth of the range per step")

	panel.Nudge(1000)
	reg.Flush()
	assert.Equal(t, 2.0, *speed)

	panel.Select(1)
	panel.Nudge(2)
	reg.Flush()
	assert.True(t, *visible, "even steps leave bools alone")
	panel.Nudge(-1)
	reg.Flush()
	assert.False(t, *visible)

	panel.Select(1)
	panel.Nudge(-1)
	reg.Flush()
	assert.Equal(t, "depth", *mode)
	panel.Nudge(2)
	reg.Flush()
	assert.Equal(t, "wire", *mode)

}

func TestPanelLines(t *testing.T) {

	panel, _, _, _ := newTestPanel(t)
	panel.Select(1)

	assert.Equal(t, []string{
		"Debug",
		"  Speed: 1.000",
		"> visible: true",
		"  mode: solid",
	}, panel.Lines())

}

func TestPanelEvents(t *testing.T) {

	panel, speed, _, _ := newTestPanel(t)
	queue := NewFrameQueue()
	fc := &FrameContext{Panel: panel}

	queue.Post(PanelNavigateEvent{Nudge: 1})
	queue.Drain(fc)
	panel.Registry().Flush()
	assert.Equal(t, 1.0, *speed, "a hidden panel ignores navigation")

	queue.Post(PanelToggleEvent{})
	queue.Post(PanelNavigateEvent{Select: 0, Nudge: 10})
	assert.Equal(t, 2, queue.Drain(fc))
	panel.Registry().Flush()
	assert.True(t, panel.Visible())
	assert.InDelta(t, 1.2, *speed, 1e-12)

	queue.Post(PanelVisibilityEvent{Visible: false})
	queue.Drain(fc)
	assert.False(t, panel.Visible())

}

func TestFormatPropertyValue(t *testing.T) {
	assert.Equal(t, "0.500", FormatPropertyValue(0.5))
	assert.Equal(t, "3", FormatPropertyValue(3))
	assert.Equal(t, "-", FormatPropertyValue(nil))
	assert.Equal(t, "x", FormatPropertyValue("x"))
}
