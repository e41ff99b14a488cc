package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-input/internal/config"
	"whisper-input/internal/i18n"
	"whisper-input/internal/input"
	"whisper-input/internal/models"
	"whisper-input/internal/speech"
)

type fakeAccessor struct {
	mu          sync.Mutex
	engine      models.Engine
	current     string
	available   map[string]bool
	recording   string
	recordings  int
	startErr    error
	loadErr     error
	loads       []string
	transcribes []string
	gate        chan struct{} // если не nil, распознавание ждёт сигнала
	result      func(modelID string) speech.Result
}

func newFakeAccessor(engine models.Engine, available ...string) *fakeAccessor {
	a := &fakeAccessor{engine: engine, available: map[string]bool{}}
	for _, id := range available {
		a.available[id] = true
	}
	a.result = func(id string) speech.Result {
		return speech.Result{Text: " text from " + id + " "}
	}
	return a
}

func (a *fakeAccessor) Engine() models.Engine { return a.engine }

func (a *fakeAccessor) StartRecording() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.startErr != nil {
		return a.startErr
	}
	a.recordings++
	a.recording = fmt.Sprintf("/tmp/rec-%d.wav", a.recordings)
	return nil
}

func (a *fakeAccessor) StopRecording() error { return nil }

func (a *fakeAccessor) LastRecording() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recording
}

func (a *fakeAccessor) TranscribeAsync(ctx context.Context, lang string, translate bool) <-chan speech.Result {
	ch := make(chan speech.Result, 1)
	go func() {
		defer close(ch)
		a.mu.Lock()
		gate := a.gate
		a.mu.Unlock()
		if gate != nil {
			<-gate
		}

		a.mu.Lock()
		id := a.current
		a.transcribes = append(a.transcribes, fmt.Sprintf("%s lang=%s translate=%t", id, lang, translate))
		a.mu.Unlock()

		if id == "" {
			ch <- speech.Result{Err: speech.ErrModelNotLoaded}
			return
		}
		ch <- a.result(id)
	}()
	return ch
}

func (a *fakeAccessor) LoadModelAsync(ctx context.Context, modelID string) <-chan error {
	ch := make(chan error, 1)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loads = append(a.loads, modelID)
	a.current = ""
	if a.loadErr != nil {
		ch <- a.loadErr
	} else {
		a.current = modelID
		ch <- nil
	}
	close(ch)
	return ch
}

func (a *fakeAccessor) IsModelAvailable(modelID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.available[modelID]
}

func (a *fakeAccessor) IsLoaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != ""
}

func (a *fakeAccessor) CurrentModelID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *fakeAccessor) Loads() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.loads...)
}

func (a *fakeAccessor) Transcribes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.transcribes...)
}

// fakeTyper эмулирует поле ввода.
type fakeTyper struct {
	mu       sync.Mutex
	field    []rune
	typeErr  error
	eraseErr error
}

func (t *fakeTyper) Type(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typeErr != nil {
		return t.typeErr
	}
	t.field = append(t.field, []rune(text)...)
	return nil
}

func (t *fakeTyper) Erase(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.eraseErr != nil {
		return t.eraseErr
	}
	if n > len(t.field) {
		n = len(t.field)
	}
	t.field = t.field[:len(t.field)-n]
	return nil
}

func (t *fakeTyper) Press(key input.Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch key {
	case input.KeySpace:
		t.field = append(t.field, ' ')
	case input.KeyReturn:
		t.field = append(t.field, '\n')
	}
	return nil
}

func (t *fakeTyper) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.field)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) add(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) Recording()          { n.add("recording") }
func (n *fakeNotifier) Processing()         { n.add("processing") }
func (n *fakeNotifier) Success(text string) { n.add("success: " + text) }
func (n *fakeNotifier) Empty()              { n.add("empty") }
func (n *fakeNotifier) Error(msg string)    { n.add("error: " + msg) }
func (n *fakeNotifier) Info(msg string)     { n.add("info: " + msg) }

func (n *fakeNotifier) Has(prefix string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

type fakeCorrector struct {
	text string
	err  error
}

func (f *fakeCorrector) Correct(ctx context.Context, text, lang string) (string, error) {
	if f.err != nil {
		return text, f.err
	}
	return f.text, nil
}

type fakeDownloader struct {
	acc       *fakeAccessor
	mu        sync.Mutex
	downloads []string
	err       error
}

func (d *fakeDownloader) Download(ctx context.Context, info models.ModelInfo, progress chan<- models.Progress) error {
	d.mu.Lock()
	d.downloads = append(d.downloads, info.ID)
	d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	progress <- models.Progress{ModelID: info.ID, Downloaded: info.Size, Total: info.Size, Done: true}
	d.acc.mu.Lock()
	d.acc.available[info.ID] = true
	d.acc.mu.Unlock()
	return nil
}

// fakeClock сдвигается вручную.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	ctrl     *Controller
	cfg      *config.Config
	acc      *fakeAccessor
	typer    *fakeTyper
	notifier *fakeNotifier
	clock    *fakeClock
	states   *stateLog
}

type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (s *stateLog) add(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

func (s *stateLog) All() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.states...)
}

func newHarness(t *testing.T, acc *fakeAccessor, corrector Corrector, downloader Downloader, hooks Hooks) *harness {
	t.Helper()
	h := &harness{
		cfg:      config.NewWithPath(""),
		acc:      acc,
		typer:    &fakeTyper{},
		notifier: &fakeNotifier{},
		clock:    &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		states:   &stateLog{},
	}
	hooks.OnState = h.states.add
	h.ctrl = NewController(h.cfg, acc, h.typer, h.notifier, corrector, downloader, hooks)
	h.ctrl.now = h.clock.Now
	t.Cleanup(h.ctrl.Close)
	return h
}

// load синхронно загружает модель.
func (h *harness) load(t *testing.T, id string) {
	t.Helper()
	h.ctrl.SelectModel(id)
	h.ctrl.Wait()
	require.Equal(t, id, h.acc.CurrentModelID())
	require.Equal(t, StateIdle, h.ctrl.State())
}

// dictate записывает секунду и ждёт вставки текста.
func (h *harness) dictate(t *testing.T) {
	t.Helper()
	h.ctrl.ToggleRecording()
	require.Equal(t, StateRecording, h.ctrl.State())
	h.clock.Advance(time.Second)
	h.ctrl.ToggleRecording()
	h.ctrl.Wait()
	require.Equal(t, StateIdle, h.ctrl.State())
}

func TestToggleRecordingWithoutModel(t *testing.T) {
	h := newHarness(t, newFakeAccessor(models.EngineWhisper), nil, nil, Hooks{})

	h.ctrl.ToggleRecording()

	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Zero(t, h.acc.recordings)
	assert.True(t, h.notifier.Has("error: "))
}

func TestDictation(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")
	h.cfg.SetLanguage("de")
	h.cfg.SetTranslate(true)

	h.dictate(t)

	assert.Equal(t, "text from whisper-base", h.typer.Text())
	assert.Equal(t, "text from whisper-base", h.ctrl.LastInsert())
	assert.Equal(t, []string{"whisper-base lang=de translate=true"}, acc.Transcribes())
	assert.True(t, h.notifier.Has("success: text from whisper-base"))
	assert.Equal(t, []State{StateLoading, StateIdle, StateRecording, StateProcessing, StateIdle}, h.states.All())
}

func TestShortRecordingDiscarded(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")

	h.ctrl.ToggleRecording()
	h.clock.Advance(MinRecordingDuration - time.Millisecond)
	h.ctrl.ToggleRecording()
	h.ctrl.Wait()

	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Empty(t, acc.Transcribes())
	assert.Empty(t, h.typer.Text())
}

func TestToggleIgnoredWhileProcessing(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")

	gate := make(chan struct{})
	acc.mu.Lock()
	acc.gate = gate
	acc.mu.Unlock()

	h.ctrl.ToggleRecording()
	h.clock.Advance(time.Second)
	h.ctrl.ToggleRecording()
	require.Equal(t, StateProcessing, h.ctrl.State())

	h.ctrl.ToggleRecording()
	h.ctrl.Improve()
	h.ctrl.SelectModel("whisper-base")
	assert.Equal(t, 1, acc.recordings)
	assert.Equal(t, []string{"whisper-base"}, acc.Loads())

	close(gate)
	h.ctrl.Wait()
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Equal(t, "text from whisper-base", h.typer.Text())
}

func TestTranscriptionErrors(t *testing.T) {
	tests := []struct {
		name   string
		result speech.Result
		want   string
	}{
		{"no recording", speech.Result{Err: speech.ErrNoRecording}, "error: "+i18n.T("error_no_recording")},
		{"engine failure", speech.Result{Err: errors.New("boom")}, "error: "},
		{"empty text", speech.Result{Text: "   "}, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
			acc.result = func(string) speech.Result { return tt.result }
			h := newHarness(t, acc, nil, nil, Hooks{})
			h.load(t, "whisper-base")

			h.dictate(t)

			assert.Empty(t, h.typer.Text())
			assert.True(t, h.notifier.Has(tt.want), h.notifier.events)
		})
	}
}

func TestLLMCorrection(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, &fakeCorrector{text: "Corrected."}, nil, Hooks{})
	h.load(t, "whisper-base")

	h.dictate(t)
	assert.Equal(t, "text from whisper-base", h.typer.Text(), "коррекция выключена")

	h.cfg.SetLLMEnabled(true)
	h.dictate(t)
	assert.Equal(t, "text from whisper-baseCorrected.", h.typer.Text())
}

func TestLLMFailureKeepsText(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, &fakeCorrector{err: errors.New("ollama down")}, nil, Hooks{})
	h.cfg.SetLLMEnabled(true)
	h.load(t, "whisper-base")

	h.dictate(t)
	assert.Equal(t, "text from whisper-base", h.typer.Text())
}

func TestTypeFailureCopiesToClipboard(t *testing.T) {
	var copied string
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{Copy: func(text string) error {
		copied = text
		return nil
	}})
	h.typer.typeErr = errors.New("no display")
	h.load(t, "whisper-base")

	h.dictate(t)

	assert.Equal(t, "text from whisper-base", copied)
	assert.True(t, h.notifier.Has("error: "+i18n.T("error_input")))
}

func TestImproveSwitchesToNextTier(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-tiny")

	h.ctrl.Space()
	h.dictate(t)
	require.Equal(t, " text from whisper-tiny", h.typer.Text())
	recording := acc.LastRecording()

	h.ctrl.Improve()
	h.ctrl.Wait()

	assert.Equal(t, " text from whisper-base", h.typer.Text())
	assert.Equal(t, "text from whisper-base", h.ctrl.LastInsert())
	assert.Equal(t, []string{"whisper-tiny", "whisper-base"}, acc.Loads())
	assert.Equal(t, "whisper-base", h.cfg.ModelID())
	assert.Equal(t, recording, acc.LastRecording(), "та же запись")
	assert.Len(t, acc.Transcribes(), 2)
}

func TestImproveAtAccurateRetranscribes(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-small-q5")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-small-q5")
	h.dictate(t)

	h.ctrl.Improve()
	h.ctrl.Wait()

	assert.Equal(t, "text from whisper-small-q5", h.typer.Text())
	assert.Equal(t, []string{"whisper-small-q5"}, acc.Loads())
	assert.Len(t, acc.Transcribes(), 2)
}

func TestImproveKeepsEditedText(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-tiny")
	h.dictate(t)

	h.ctrl.Return()
	h.ctrl.Improve()
	h.ctrl.Wait()

	assert.Equal(t, "text from whisper-tiny\ntext from whisper-base", h.typer.Text())
}

func TestImproveAfterEmptyResultKeepsEarlierText(t *testing.T) {
	tests := []struct {
		name   string
		second speech.Result
	}{
		{"empty", speech.Result{Text: "   "}},
		{"error", speech.Result{Err: errors.New("decoder failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base")
			calls := 0
			acc.result = func(id string) speech.Result {
				calls++
				if calls == 1 {
					return speech.Result{Text: "first"}
				}
				return tt.second
			}
			h := newHarness(t, acc, nil, nil, Hooks{})
			h.load(t, "whisper-tiny")

			h.dictate(t)
			h.dictate(t)
			require.Equal(t, "first", h.typer.Text())
			assert.Empty(t, h.ctrl.LastInsert())

			h.ctrl.Improve()
			h.ctrl.Wait()

			assert.Equal(t, "first", h.typer.Text())
			assert.Equal(t, []string{"whisper-tiny", "whisper-base"}, acc.Loads())
		})
	}
}

func TestImproveErasesLongInsert(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end"
	require.Greater(t, len([]rune(long)), historySize)

	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base")
	acc.result = func(id string) speech.Result {
		if id == "whisper-base" {
			return speech.Result{Text: "better"}
		}
		return speech.Result{Text: long}
	}
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-tiny")
	h.dictate(t)
	require.Equal(t, long, h.typer.Text())

	h.ctrl.Improve()
	h.ctrl.Wait()

	assert.Equal(t, "better", h.typer.Text())
}

func TestImproveAbortsWhenEraseFails(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-tiny")
	h.dictate(t)

	h.typer.eraseErr = errors.New("backspace failed")
	h.ctrl.Improve()
	h.ctrl.Wait()

	assert.Equal(t, "text from whisper-tiny", h.typer.Text())
	assert.Equal(t, []string{"whisper-tiny"}, acc.Loads())
	assert.Len(t, acc.Transcribes(), 1)
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.True(t, h.notifier.Has("error: "+i18n.T("error_input")))
}

func TestKeysKeepHistoryBounded(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")

	for i := 0; i < historySize+50; i++ {
		h.ctrl.Space()
	}

	h.ctrl.mu.Lock()
	defer h.ctrl.mu.Unlock()
	assert.Len(t, h.ctrl.history, historySize)
}

func TestImproveWithoutRecording(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-tiny")

	h.ctrl.Improve()

	assert.Equal(t, []string{"whisper-tiny"}, acc.Loads())
	assert.True(t, h.notifier.Has("error: "+i18n.T("error_no_recording")))
}

func TestSelectModelDownload(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper)
	downloader := &fakeDownloader{acc: acc}

	var asked []string
	var progress []models.Progress
	answer := false
	h := newHarness(t, acc, nil, downloader, Hooks{
		AskDownload: func(info models.ModelInfo) bool {
			asked = append(asked, info.ID)
			return answer
		},
		OnProgress: func(p models.Progress) { progress = append(progress, p) },
	})

	h.ctrl.SelectModel("whisper-tiny")
	h.ctrl.Wait()
	assert.Equal(t, []string{"whisper-tiny"}, asked)
	assert.Empty(t, downloader.downloads)
	assert.Empty(t, acc.Loads())

	answer = true
	h.ctrl.SelectModel("whisper-tiny")
	h.ctrl.Wait()
	assert.Equal(t, []string{"whisper-tiny"}, downloader.downloads)
	assert.Equal(t, []string{"whisper-tiny"}, acc.Loads())
	require.Len(t, progress, 1)
	assert.True(t, progress[0].Done)
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestSelectManualModel(t *testing.T) {
	acc := newFakeAccessor(models.EngineOnnx, "onnx-whisper-tiny")
	downloader := &fakeDownloader{acc: acc}
	var asked []string
	h := newHarness(t, acc, nil, downloader, Hooks{
		AskDownload: func(info models.ModelInfo) bool {
			asked = append(asked, info.ID)
			return true
		},
	})
	h.load(t, "onnx-whisper-tiny")

	h.ctrl.SelectModel("onnx-whisper-base")
	h.ctrl.Wait()

	assert.Empty(t, asked)
	assert.Empty(t, downloader.downloads)
	assert.Equal(t, []string{"onnx-whisper-tiny"}, acc.Loads())
	assert.True(t, h.notifier.Has("info: "+i18n.T("error_model_manual")))
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestSelectModelDownloadFailure(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper)
	downloader := &fakeDownloader{acc: acc, err: errors.New("offline")}
	h := newHarness(t, acc, nil, downloader, Hooks{
		AskDownload: func(models.ModelInfo) bool { return true },
	})

	h.ctrl.SelectModel("whisper-tiny")
	h.ctrl.Wait()

	assert.Empty(t, acc.Loads())
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.True(t, h.notifier.Has("error: "+i18n.T("error_download")))
}

func TestSelectModelValidation(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "vosk-en-small")
	h := newHarness(t, acc, nil, nil, Hooks{})

	h.ctrl.SelectModel("vosk-en-small")
	h.ctrl.SelectModel("nope")
	h.ctrl.Wait()

	assert.Empty(t, acc.Loads())
}

func TestLoadFailure(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	acc.loadErr = errors.New("corrupt model")
	h := newHarness(t, acc, nil, nil, Hooks{})

	h.ctrl.SelectModel("whisper-base")
	h.ctrl.Wait()

	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.False(t, acc.IsLoaded())
	assert.True(t, h.notifier.Has("error: "+i18n.T("error_model_load")))
}

func TestSelectTierAndLanguage(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny", "whisper-base", "whisper-base-en")
	var selected []string
	h := newHarness(t, acc, nil, nil, Hooks{OnModel: func(info models.ModelInfo) {
		selected = append(selected, info.ID)
	}})

	h.ctrl.SelectTier(models.TierFast)
	h.ctrl.Wait()
	assert.Equal(t, "whisper-tiny", acc.CurrentModelID())

	h.ctrl.SelectTier(models.TierBalanced)
	h.ctrl.Wait()
	assert.Equal(t, "whisper-base", acc.CurrentModelID())

	// Язык внутри семейства не меняет модель
	h.ctrl.SetLanguage("de", false)
	h.ctrl.Wait()
	assert.Equal(t, "whisper-base", acc.CurrentModelID())
	assert.Equal(t, "de", h.cfg.Language())

	// Английская модель того же уровня
	h.ctrl.SetLanguage("en", true)
	h.ctrl.Wait()
	assert.Equal(t, "whisper-base-en", acc.CurrentModelID())
	assert.True(t, h.cfg.EnglishOnly())

	assert.Equal(t, []string{"whisper-tiny", "whisper-base", "whisper-base-en"}, selected)
}

func TestSetLanguageIgnoredWhileRecording(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base", "whisper-base-en")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")
	lang, englishOnly := h.cfg.Language(), h.cfg.EnglishOnly()

	h.ctrl.ToggleRecording()
	require.Equal(t, StateRecording, h.ctrl.State())

	h.ctrl.SetLanguage("en", true)
	assert.Equal(t, lang, h.cfg.Language())
	assert.Equal(t, englishOnly, h.cfg.EnglishOnly())
	assert.Equal(t, []string{"whisper-base"}, acc.Loads())

	h.clock.Advance(time.Second)
	h.ctrl.ToggleRecording()
	h.ctrl.Wait()
	assert.Equal(t, "whisper-base", acc.CurrentModelID())
}

func TestVoskLanguageSwitchesModel(t *testing.T) {
	acc := newFakeAccessor(models.EngineVosk, "vosk-en-small", "vosk-ru-small")
	h := newHarness(t, acc, nil, nil, Hooks{})

	h.ctrl.LoadInitial()
	h.ctrl.Wait()
	assert.Equal(t, "vosk-en-small", acc.CurrentModelID())

	h.ctrl.SetLanguage("ru", false)
	h.ctrl.Wait()
	assert.Equal(t, "vosk-ru-small", acc.CurrentModelID())
}

func TestLoadInitialUsesConfig(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-tiny")
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.cfg.SetModelID("whisper-tiny")

	h.ctrl.LoadInitial()
	h.ctrl.Wait()

	assert.Equal(t, "whisper-tiny", acc.CurrentModelID())
}

func TestKeys(t *testing.T) {
	acc := newFakeAccessor(models.EngineWhisper, "whisper-base")
	acc.result = func(string) speech.Result { return speech.Result{Text: "hello world"} }
	h := newHarness(t, acc, nil, nil, Hooks{})
	h.load(t, "whisper-base")

	h.dictate(t)
	h.ctrl.Space()
	h.ctrl.Return()
	require.Equal(t, "hello world \n", h.typer.Text())

	h.ctrl.DeleteWord()
	assert.Equal(t, "hello world ", h.typer.Text())

	h.ctrl.DeleteWord()
	assert.Equal(t, "hello ", h.typer.Text())

	h.ctrl.DeleteWord()
	assert.Equal(t, "", h.typer.Text())

	// Пустая история: удаляется один символ
	h.typer.field = []rune("xy")
	h.ctrl.DeleteWord()
	assert.Equal(t, "x", h.typer.Text())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "state(9)", State(9).String())
}
