package speech

import (
	"fmt"
	"log"
	"sync"
	"time"

	"whisper-input/internal/models"
)

// OpenFunc создаёт распознаватель из файлов модели.
type OpenFunc func(info models.ModelInfo, modelPath, vocabPath string) (Recognizer, error)

// Factory держит единственный загруженный распознаватель.
type Factory struct {
	manager *models.Manager
	open    OpenFunc

	loadMu  sync.Mutex // сериализует загрузки
	mu      sync.RWMutex
	current Recognizer
	modelID string
}

// NewFactory создаёт фабрику распознавателей.
func NewFactory(manager *models.Manager) *Factory {
	return NewFactoryWithOpener(manager, Open)
}

// NewFactoryWithOpener создаёт фабрику с собственным конструктором движков.
func NewFactoryWithOpener(manager *models.Manager, open OpenFunc) *Factory {
	return &Factory{
		manager: manager,
		open:    open,
	}
}

// Open создаёт распознаватель для движка модели.
func Open(info models.ModelInfo, modelPath, vocabPath string) (Recognizer, error) {
	switch info.Engine {
	case models.EngineWhisper:
		return NewWhisperFromFile(modelPath)
	case models.EngineOnnx:
		return NewOnnx(modelPath, vocabPath, info.EnglishOnly)
	case models.EngineVosk:
		return NewVosk(modelPath)
	default:
		return nil, fmt.Errorf("неизвестный движок: %s", info.Engine)
	}
}

// Create создаёт распознаватель для указанной модели, не трогая текущий.
func (f *Factory) Create(modelID string) (Recognizer, error) {
	info, ok := models.GetModel(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownModel, modelID)
	}

	// Проверяем что модель скачана
	if !f.manager.IsDownloaded(info) {
		return nil, fmt.Errorf("модель не скачана: %s", info.Name)
	}

	rec, err := f.open(info, f.manager.GetModelPath(info), f.manager.GetVocabPath(info))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания распознавателя: %w", err)
	}

	return rec, nil
}

// Load освобождает текущую модель и загружает новую.
// Старая модель закрывается до загрузки новой, чтобы в памяти не было двух.
// При ошибке загрузки модель остаётся не загруженной.
func (f *Factory) Load(modelID string) error {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.mu.Lock()
	old := f.current
	f.current = nil
	f.modelID = ""
	f.mu.Unlock()

	if old != nil {
		old.Close()
	}

	start := time.Now()
	rec, err := f.Create(modelID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.current = rec
	f.modelID = modelID
	f.mu.Unlock()

	log.Printf("Модель %s (%s) загружена за %v", modelID, rec.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}

// Current возвращает текущий распознаватель (thread-safe).
func (f *Factory) Current() Recognizer {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// CurrentModelID возвращает ID текущей модели.
func (f *Factory) CurrentModelID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modelID
}

// IsLoaded проверяет, загружена ли модель.
func (f *Factory) IsLoaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current != nil
}

// IsAvailable проверяет наличие файлов модели.
func (f *Factory) IsAvailable(modelID string) bool {
	return f.manager.IsAvailable(modelID)
}

// Close закрывает текущий распознаватель.
func (f *Factory) Close() {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil {
		f.current.Close()
		f.current = nil
		f.modelID = ""
	}
}
