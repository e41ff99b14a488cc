package speech

import (
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer реализует Recognizer через whisper.cpp.
type WhisperRecognizer struct {
	mu    sync.Mutex
	model whisper.Model
}

// NewWhisperFromFile создаёт WhisperRecognizer из ggml файла модели.
func NewWhisperFromFile(modelPath string) (*WhisperRecognizer, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, err
	}

	return &WhisperRecognizer{
		model: model,
	}, nil
}

// Name возвращает название движка.
func (w *WhisperRecognizer) Name() string {
	return "whisper"
}

// Transcribe распознаёт речь из аудио сэмплов.
func (w *WhisperRecognizer) Transcribe(samples []float32, lang string, translate bool) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", ErrModelNotLoaded
	}

	ctx, err := w.model.NewContext()
	if err != nil {
		return "", err
	}

	ctx.SetTranslate(translate)

	// .en модели не принимают язык, "auto" включает автодетект
	if lang != "" && w.model.IsMultilingual() {
		if err := ctx.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("язык %q: %w", lang, err)
		}
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", err
	}

	// Собираем результат из сегментов
	var result strings.Builder
	for {
		segment, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		result.WriteString(segment.Text)
	}

	return strings.TrimSpace(result.String()), nil
}

// Close освобождает ресурсы.
func (w *WhisperRecognizer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
}
