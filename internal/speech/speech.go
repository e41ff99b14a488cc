// Package speech предоставляет движки распознавания речи и Accessor,
// который связывает запись с микрофона и загруженную модель.
package speech

import "errors"

var (
	// ErrModelNotLoaded - распознавание запрошено до загрузки модели.
	ErrModelNotLoaded = errors.New("модель не загружена")
	// ErrNoRecording - нет записи для распознавания.
	ErrNoRecording = errors.New("файл последней записи не найден")
)

// Recognizer - интерфейс для движков распознавания речи.
type Recognizer interface {
	// Transcribe распознаёт речь из аудио сэмплов.
	// samples - аудио данные в формате float32, 16kHz, mono.
	// lang - язык распознавания ("ru", "en", "auto" для автоопределения).
	// translate - перевести результат на английский (если движок умеет).
	Transcribe(samples []float32, lang string, translate bool) (string, error)

	// Close освобождает ресурсы движка.
	Close()

	// Name возвращает название движка (для логирования).
	Name() string
}

// Result результат асинхронного распознавания.
type Result struct {
	Text string
	Err  error
}
