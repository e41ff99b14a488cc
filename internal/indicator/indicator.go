// Package indicator показывает небольшое окно состояния: уровень микрофона
// во время записи и спиннер, пока загружается модель или идёт распознавание.
package indicator

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"whisper-input/internal/i18n"
	"whisper-input/internal/models"
)

var (
	colorBG     = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	colorText   = color.NRGBA{R: 240, G: 240, B: 245, A: 255}
	colorDim    = color.NRGBA{R: 140, G: 140, B: 150, A: 255}
	colorAccent = color.NRGBA{R: 88, G: 166, B: 255, A: 255}
	colorRecord = color.NRGBA{R: 255, G: 69, B: 58, A: 255}
	colorPanel  = color.NRGBA{R: 45, G: 45, B: 50, A: 255}
	colorLow    = color.NRGBA{R: 52, G: 199, B: 89, A: 255}
	colorMid    = color.NRGBA{R: 255, G: 180, B: 0, A: 255}
)

const (
	windowWidth  = 300
	windowHeight = 150
)

// Window окно с анимированным индикатором и строкой статуса.
type Window struct {
	mu      sync.Mutex
	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	status    string
	substatus string

	// Режим записи: уровень сигнала и время вместо спиннера
	level     func() float32
	startTime time.Time
}

// New создаёт окно. Окно не показывается до вызова Show.
func New() *Window {
	return &Window{}
}

// Show показывает окно со статусом. Если окно уже открыто, меняется только текст.
func (w *Window) Show(status, substatus string) {
	w.mu.Lock()
	w.level = nil
	w.mu.Unlock()
	w.SetStatus(status, substatus)
	w.open()
}

// ShowRecording показывает индикатор уровня микрофона и время записи.
// level возвращает пиковый уровень в диапазоне [0, 1].
func (w *Window) ShowRecording(start time.Time, level func() float32) {
	w.mu.Lock()
	w.level = level
	w.startTime = start
	w.mu.Unlock()
	w.SetStatus(i18n.T("indicator_recording"), "")
	w.open()
}

func (w *Window) open() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runEventLoop(stopCh, doneCh)
}

// Hide закрывает окно.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
	}
}

// Visible сообщает, открыто ли окно.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// SetStatus меняет текст в окне.
func (w *Window) SetStatus(status, substatus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.substatus = substatus
}

func (w *Window) getStatus() (string, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.substatus
}

func (w *Window) recording() (func() float32, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level, w.startTime
}

// SetProgress показывает прогресс скачивания модели.
func (w *Window) SetProgress(p models.Progress) {
	w.SetStatus(i18n.T("indicator_downloading"), ProgressText(p))
}

// formatElapsed форматирует длительность записи как "м:сс".
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// levelColor цвет полосы уровня: зелёный, жёлтый, красный при перегрузке.
func levelColor(level float32) color.NRGBA {
	switch {
	case level > 0.7:
		return colorRecord
	case level > 0.4:
		return colorMid
	default:
		return colorLow
	}
}

// ProgressText форматирует прогресс скачивания: "12.5 / 75.0 MB (16%)".
func ProgressText(p models.Progress) string {
	const mb = 1 << 20
	if p.Total <= 0 {
		return fmt.Sprintf("%.1f MB", float64(p.Downloaded)/mb)
	}
	percent := p.Downloaded * 100 / p.Total
	return fmt.Sprintf("%.1f / %.1f MB (%d%%)", float64(p.Downloaded)/mb, float64(p.Total)/mb, percent)
}

func (w *Window) runEventLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	win := new(app.Window)
	win.Option(
		app.Title(i18n.T("app_name")),
		app.Size(unit.Dp(windowWidth), unit.Dp(windowHeight)),
		app.MinSize(unit.Dp(windowWidth), unit.Dp(windowHeight)),
		app.MaxSize(unit.Dp(windowWidth), unit.Dp(windowHeight)),
	)
	go positionWindow(i18n.T("app_name"), windowWidth, windowHeight)
	w.mu.Lock()
	w.window = win
	w.mu.Unlock()

	var ops op.Ops
	th := material.NewTheme()

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				win.Perform(system.ActionClose)
				return
			case <-ticker.C:
				win.Invalidate()
			}
		}
	}()

	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			w.mu.Lock()
			w.window = nil
			// Окно закрыто пользователем
			if w.stopCh == stopCh {
				w.running = false
				w.stopCh = nil
				close(stopCh)
			}
			w.mu.Unlock()
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.draw(gtx, th)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) draw(gtx layout.Context, th *material.Theme) layout.Dimensions {
	paint.FillShape(gtx.Ops, colorBG, clip.Rect{Max: gtx.Constraints.Max}.Op())

	status, substatus := w.getStatus()
	level, start := w.recording()

	top := drawSpinner
	if level != nil {
		elapsed := time.Since(start)
		substatus = formatElapsed(elapsed)
		top = func(gtx layout.Context) layout.Dimensions {
			return drawLevel(gtx, level(), elapsed)
		}
	}

	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(top),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), status)
				lbl.Color = colorText
				lbl.Font.Weight = font.Medium
				lbl.Alignment = text.Middle
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if substatus == "" {
					return layout.Dimensions{}
				}
				return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Label(th, unit.Sp(11), substatus)
					lbl.Color = colorDim
					lbl.Alignment = text.Middle
					return lbl.Layout(gtx)
				})
			}),
		)
	})
}

// drawSpinner рисует 12 точек по кругу с затухающей прозрачностью.
func drawSpinner(gtx layout.Context) layout.Dimensions {
	size := gtx.Dp(unit.Dp(40))
	thickness := gtx.Dp(unit.Dp(3))

	angle := float64(time.Now().UnixMilli()%1000) / 1000.0 * 2 * math.Pi

	center := image.Pt(size/2, size/2)
	radius := size/2 - thickness

	const numSegments = 12
	for i := 0; i < numSegments; i++ {
		segmentAngle := angle + float64(i)*2*math.Pi/numSegments
		alpha := uint8(255 - i*20)

		x := center.X + int(float64(radius)*math.Cos(segmentAngle))
		y := center.Y + int(float64(radius)*math.Sin(segmentAngle))

		r := thickness / 2
		dot := clip.Ellipse{Min: image.Pt(x-r, y-r), Max: image.Pt(x+r, y+r)}
		col := colorAccent
		col.A = alpha
		paint.FillShape(gtx.Ops, col, dot.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(size, size)}
}

// drawLevel рисует пульсирующую точку записи и горизонтальную полосу уровня.
func drawLevel(gtx layout.Context, level float32, elapsed time.Duration) layout.Dimensions {
	width := gtx.Dp(unit.Dp(200))
	height := gtx.Dp(unit.Dp(40))
	dot := gtx.Dp(unit.Dp(12))
	barHeight := gtx.Dp(unit.Dp(8))
	gap := gtx.Dp(unit.Dp(10))
	rr := barHeight / 2

	pulse := math.Sin(float64(elapsed.Milliseconds())/200.0)*0.3 + 0.7
	dotCol := colorRecord
	dotCol.A = uint8(255 * pulse)
	dotY := (height - dot) / 2
	paint.FillShape(gtx.Ops, dotCol, clip.Ellipse{
		Min: image.Pt(0, dotY),
		Max: image.Pt(dot, dotY+dot),
	}.Op(gtx.Ops))

	barX := dot + gap
	barY := (height - barHeight) / 2
	bg := clip.RRect{
		Rect: image.Rect(barX, barY, width, barY+barHeight),
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, colorPanel, bg.Op(gtx.Ops))

	if filled := int(level * float32(width-barX)); filled > 0 {
		bar := clip.RRect{
			Rect: image.Rect(barX, barY, barX+filled, barY+barHeight),
			NE:   rr, NW: rr, SE: rr, SW: rr,
		}
		paint.FillShape(gtx.Ops, levelColor(level), bar.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(width, height)}
}
