package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"whisper-input/internal/audio"
	"whisper-input/internal/models"
)

// Recorder пишет микрофон в WAV файл.
type Recorder interface {
	Start(path string) error
	Stop() error
	IsRecording() bool
}

// Accessor связывает запись с микрофона и модель одного движка.
// В каждый момент есть не больше одной загруженной модели и одной записи.
type Accessor struct {
	engine   models.Engine
	factory  *Factory
	recorder Recorder
	tmpDir   string

	mu            sync.Mutex
	lastRecording string
	ownsRecording bool // файл создан нами и удаляется при замене
}

// NewAccessor создаёт Accessor для движка engine.
// recorder может быть nil, тогда доступна только UseRecording.
func NewAccessor(engine models.Engine, factory *Factory, recorder Recorder, tmpDir string) *Accessor {
	return &Accessor{
		engine:   engine,
		factory:  factory,
		recorder: recorder,
		tmpDir:   tmpDir,
	}
}

// Engine возвращает движок, с которым работает Accessor.
func (a *Accessor) Engine() models.Engine {
	return a.engine
}

// StartRecording начинает запись в новый временный файл.
// Предыдущая запись заменяется, а её файл удаляется.
func (a *Accessor) StartRecording() error {
	if a.recorder == nil {
		return errors.New("запись с микрофона недоступна")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recorder.IsRecording() {
		return nil
	}

	f, err := os.CreateTemp(a.tmpDir, "rec-*.wav")
	if err != nil {
		return fmt.Errorf("не удалось создать файл записи: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := a.recorder.Start(path); err != nil {
		os.Remove(path)
		return err
	}

	a.replaceRecording(path, true)
	return nil
}

// StopRecording останавливает запись, после чего файл можно читать.
func (a *Accessor) StopRecording() error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Stop()
}

// UseRecording делает внешний WAV файл последней записью.
// Внешний файл никогда не удаляется.
func (a *Accessor) UseRecording(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replaceRecording(path, false)
}

func (a *Accessor) replaceRecording(path string, owned bool) {
	if a.ownsRecording && a.lastRecording != "" && a.lastRecording != path {
		if err := os.Remove(a.lastRecording); err != nil && !os.IsNotExist(err) {
			log.Printf("Не удалось удалить старую запись %s: %v", a.lastRecording, err)
		}
	}
	a.lastRecording = path
	a.ownsRecording = owned
}

// LastRecording возвращает путь к последней записи.
func (a *Accessor) LastRecording() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRecording
}

// Transcribe распознаёт последнюю запись текущей моделью.
func (a *Accessor) Transcribe(ctx context.Context, lang string, translate bool) (string, error) {
	rec := a.factory.Current()
	if rec == nil {
		return "", ErrModelNotLoaded
	}

	path := a.LastRecording()
	if path == "" {
		return "", ErrNoRecording
	}

	samples, err := audio.ReadWAV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoRecording, path)
		}
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := rec.Transcribe(samples, lang, translate)
	if err != nil {
		return "", fmt.Errorf("ошибка распознавания: %w", err)
	}

	log.Printf("Распознано (%s, lang=%s, translate=%t) за %v: %q",
		rec.Name(), lang, translate, time.Since(start).Round(time.Millisecond), text)
	return text, nil
}

// TranscribeAsync запускает Transcribe в фоне. Канал отдаёт ровно один результат.
func (a *Accessor) TranscribeAsync(ctx context.Context, lang string, translate bool) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := a.Transcribe(ctx, lang, translate)
		ch <- Result{Text: text, Err: err}
	}()
	return ch
}

// LoadModel освобождает текущую модель и загружает modelID.
func (a *Accessor) LoadModel(ctx context.Context, modelID string) error {
	info, ok := models.GetModel(modelID)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownModel, modelID)
	}
	if info.Engine != a.engine {
		return fmt.Errorf("модель %s не для движка %s", modelID, models.EngineName(a.engine))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.factory.Load(modelID)
}

// LoadModelAsync запускает LoadModel в фоне. Канал отдаёт ровно одно значение.
func (a *Accessor) LoadModelAsync(ctx context.Context, modelID string) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- a.LoadModel(ctx, modelID)
	}()
	return ch
}

// IsModelAvailable проверяет, что файлы модели скачаны и она подходит движку.
func (a *Accessor) IsModelAvailable(modelID string) bool {
	info, ok := models.GetModel(modelID)
	if !ok || info.Engine != a.engine {
		return false
	}
	return a.factory.IsAvailable(modelID)
}

// IsLoaded проверяет, загружена ли модель.
func (a *Accessor) IsLoaded() bool {
	return a.factory.IsLoaded()
}

// CurrentModelID возвращает ID загруженной модели.
func (a *Accessor) CurrentModelID() string {
	return a.factory.CurrentModelID()
}

// Close останавливает запись, удаляет временный файл и выгружает модель.
func (a *Accessor) Close() {
	if a.recorder != nil && a.recorder.IsRecording() {
		if err := a.recorder.Stop(); err != nil {
			log.Printf("Ошибка остановки записи: %v", err)
		}
	}

	a.mu.Lock()
	a.replaceRecording("", false)
	a.mu.Unlock()

	a.factory.Close()
}
