package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"whisper-input/internal/models"
)

func TestProgressText(t *testing.T) {
	tests := []struct {
		name string
		p    models.Progress
		want string
	}{
		{"unknown total", models.Progress{Downloaded: 3 << 20}, "3.0 MB"},
		{"half", models.Progress{Downloaded: 5 << 20, Total: 10 << 20}, "5.0 / 10.0 MB (50%)"},
		{"done", models.Progress{Downloaded: 75 << 20, Total: 75 << 20}, "75.0 / 75.0 MB (100%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressText(tt.p))
		})
	}
}

func TestStatusWithoutWindow(t *testing.T) {
	w := New()
	assert.False(t, w.Visible())

	w.SetStatus("a", "b")
	status, sub := w.getStatus()
	assert.Equal(t, "a", status)
	assert.Equal(t, "b", sub)

	// Hide без Show ничего не делает
	w.Hide()
	assert.False(t, w.Visible())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00", formatElapsed(400*time.Millisecond))
	assert.Equal(t, "0:07", formatElapsed(7*time.Second))
	assert.Equal(t, "2:05", formatElapsed(125*time.Second))
}

func TestLevelColor(t *testing.T) {
	assert.Equal(t, colorLow, levelColor(0.1))
	assert.Equal(t, colorMid, levelColor(0.5))
	assert.Equal(t, colorRecord, levelColor(0.9))
}

func TestParseGeometry(t *testing.T) {
	w, h := parseGeometry("1920 1080\n")
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = parseGeometry("garbage")
	assert.Zero(t, w)
	assert.Zero(t, h)

	w, h = parseGeometry("1920 x")
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestCornerPosition(t *testing.T) {
	x, y := cornerPosition(1920, 1080, 300, 150)
	assert.Equal(t, 1600, x)
	assert.Equal(t, 870, y)

	x, y = cornerPosition(200, 100, 300, 150)
	assert.Zero(t, x)
	assert.Zero(t, y)
}
