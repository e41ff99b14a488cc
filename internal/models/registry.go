// Package models управляет моделями распознавания речи.
package models

import "errors"

var (
	// ErrUnknownModel возвращается для ID, которого нет в реестре.
	ErrUnknownModel = errors.New("неизвестная модель")
	// ErrManualInstall возвращается для моделей без URL скачивания.
	ErrManualInstall = errors.New("модель устанавливается вручную")
)

// Engine тип движка распознавания.
type Engine string

const (
	// EngineWhisper - ggml модель для whisper.cpp.
	EngineWhisper Engine = "whisper"
	// EngineOnnx - ONNX граф Whisper + vocab.json.
	EngineOnnx Engine = "onnx"
	// EngineVosk - распакованная модель Vosk.
	EngineVosk Engine = "vosk"
)

// Tier уровень качества модели (кнопки Fast/Balanced/Accurate).
type Tier int

const (
	TierFast Tier = iota
	TierBalanced
	TierAccurate
	TierBest
)

// String возвращает имя уровня.
func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierBalanced:
		return "balanced"
	case TierAccurate:
		return "accurate"
	case TierBest:
		return "best"
	default:
		return "unknown"
	}
}

// ModelInfo информация о модели.
type ModelInfo struct {
	ID            string // Уникальный идентификатор: "whisper-base"
	Engine        Engine // Движок
	Name          string // Отображаемое имя
	Filename      string // Имя файла/директории: "ggml-base.bin"
	VocabFilename string // Словарь токенизатора (только onnx)
	URL           string // URL для скачивания, пустой для моделей, которые кладут вручную
	VocabURL      string // URL словаря
	Size          int64  // Размер в байтах (для прогресса)
	IsZip         bool   // Нужно ли распаковывать
	Tier          Tier
	EnglishOnly   bool   // .en модели Whisper
	Language      string // Язык модели Vosk
}

const (
	hfWhisper = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"
	hfOnnx    = "https://huggingface.co/onnx-community/"
	voskURL   = "https://alphacephei.com/vosk/models/"
)

// Registry все доступные модели.
var Registry = []ModelInfo{
	// Whisper - многоязычные
	{ID: "whisper-tiny", Engine: EngineWhisper, Name: "Tiny", Filename: "ggml-tiny.bin",
		URL: hfWhisper + "ggml-tiny.bin", Size: 75 << 20, Tier: TierFast},
	{ID: "whisper-base", Engine: EngineWhisper, Name: "Base", Filename: "ggml-base.bin",
		URL: hfWhisper + "ggml-base.bin", Size: 142 << 20, Tier: TierBalanced},
	{ID: "whisper-small-q5", Engine: EngineWhisper, Name: "Small Q5", Filename: "ggml-small-q5_1.bin",
		URL: hfWhisper + "ggml-small-q5_1.bin", Size: 181 << 20, Tier: TierAccurate},
	{ID: "whisper-medium-q5", Engine: EngineWhisper, Name: "Medium Q5", Filename: "ggml-medium-q5_0.bin",
		URL: hfWhisper + "ggml-medium-q5_0.bin", Size: 514 << 20, Tier: TierBest},

	// Whisper - только английский
	{ID: "whisper-tiny-en", Engine: EngineWhisper, Name: "Tiny (en)", Filename: "ggml-tiny.en.bin",
		URL: hfWhisper + "ggml-tiny.en.bin", Size: 75 << 20, Tier: TierFast, EnglishOnly: true},
	{ID: "whisper-base-en", Engine: EngineWhisper, Name: "Base (en)", Filename: "ggml-base.en.bin",
		URL: hfWhisper + "ggml-base.en.bin", Size: 142 << 20, Tier: TierBalanced, EnglishOnly: true},
	{ID: "whisper-small-en-q5", Engine: EngineWhisper, Name: "Small Q5 (en)", Filename: "ggml-small.en-q5_1.bin",
		URL: hfWhisper + "ggml-small.en-q5_1.bin", Size: 181 << 20, Tier: TierAccurate, EnglishOnly: true},

	// ONNX: единый граф log-mel -> токены собирается экспортом вручную,
	// скачивается только словарь
	{ID: "onnx-whisper-tiny", Engine: EngineOnnx, Name: "Tiny ONNX", Filename: "whisper-tiny.onnx",
		VocabFilename: "whisper-tiny.vocab.json",
		VocabURL:      hfOnnx + "whisper-tiny/resolve/main/vocab.json",
		Size:          150 << 20, Tier: TierFast},
	{ID: "onnx-whisper-base", Engine: EngineOnnx, Name: "Base ONNX", Filename: "whisper-base.onnx",
		VocabFilename: "whisper-base.vocab.json",
		VocabURL:      hfOnnx + "whisper-base/resolve/main/vocab.json",
		Size:          290 << 20, Tier: TierBalanced},
	{ID: "onnx-whisper-tiny-en", Engine: EngineOnnx, Name: "Tiny ONNX (en)", Filename: "whisper-tiny.en.onnx",
		VocabFilename: "whisper-tiny.en.vocab.json",
		VocabURL:      hfOnnx + "whisper-tiny.en/resolve/main/vocab.json",
		Size:          150 << 20, Tier: TierFast, EnglishOnly: true},

	// Vosk
	{ID: "vosk-en-small", Engine: EngineVosk, Name: "English Small", Filename: "vosk-model-small-en-us-0.15",
		URL: voskURL + "vosk-model-small-en-us-0.15.zip", Size: 40 << 20, IsZip: true, Tier: TierFast, Language: "en"},
	{ID: "vosk-de-small", Engine: EngineVosk, Name: "German Small", Filename: "vosk-model-small-de-0.15",
		URL: voskURL + "vosk-model-small-de-0.15.zip", Size: 45 << 20, IsZip: true, Tier: TierFast, Language: "de"},
	{ID: "vosk-ru-small", Engine: EngineVosk, Name: "Russian Small", Filename: "vosk-model-small-ru-0.22",
		URL: voskURL + "vosk-model-small-ru-0.22.zip", Size: 45 << 20, IsZip: true, Tier: TierFast, Language: "ru"},
	{ID: "vosk-ru", Engine: EngineVosk, Name: "Russian Large", Filename: "vosk-model-ru-0.42",
		URL: voskURL + "vosk-model-ru-0.42.zip", Size: 1800 << 20, IsZip: true, Tier: TierAccurate, Language: "ru"},
}

// Downloadable сообщает, можно ли скачать модель автоматически.
func (m ModelInfo) Downloadable() bool {
	return m.URL != ""
}

// DefaultModelID модель по умолчанию для движка.
func DefaultModelID(engine Engine) string {
	switch engine {
	case EngineOnnx:
		return "onnx-whisper-tiny"
	case EngineVosk:
		return "vosk-en-small"
	default:
		return "whisper-base"
	}
}

// GetModel возвращает модель по ID.
func GetModel(id string) (ModelInfo, bool) {
	for _, m := range Registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GetModelsByEngine возвращает модели для указанного движка.
func GetModelsByEngine(engine Engine) []ModelInfo {
	var result []ModelInfo
	for _, m := range Registry {
		if m.Engine == engine {
			result = append(result, m)
		}
	}
	return result
}

// AllEngines возвращает все движки.
func AllEngines() []Engine {
	return []Engine{EngineWhisper, EngineOnnx, EngineVosk}
}

// ParseEngine разбирает имя движка из конфигурации или флага.
func ParseEngine(s string) (Engine, bool) {
	for _, e := range AllEngines() {
		if string(e) == s {
			return e, true
		}
	}
	return "", false
}

// EngineName возвращает отображаемое имя движка.
func EngineName(e Engine) string {
	switch e {
	case EngineWhisper:
		return "Whisper"
	case EngineOnnx:
		return "ONNX Runtime"
	case EngineVosk:
		return "Vosk"
	default:
		return string(e)
	}
}

// Query описывает желаемую модель.
type Query struct {
	Engine      Engine
	Tier        Tier
	Language    string
	EnglishOnly bool
}

// sameFamily проверяет, что модель подходит по языку.
func (q Query) sameFamily(m ModelInfo) bool {
	if m.Engine != q.Engine {
		return false
	}
	if m.Engine == EngineVosk {
		lang := q.Language
		if lang == "" || lang == "auto" {
			lang = "en"
		}
		return m.Language == lang
	}
	return m.EnglishOnly == q.EnglishOnly
}

// ModelFor подбирает модель под запрос: самый высокий уровень не выше
// запрошенного, а если такого нет - самый низкий из доступных в семействе.
func ModelFor(q Query) (ModelInfo, bool) {
	var best, lowest ModelInfo
	foundBest, foundLowest := false, false

	for _, m := range Registry {
		if !q.sameFamily(m) {
			continue
		}
		if m.Tier <= q.Tier && (!foundBest || m.Tier > best.Tier) {
			best, foundBest = m, true
		}
		if !foundLowest || m.Tier < lowest.Tier {
			lowest, foundLowest = m, true
		}
	}

	if foundBest {
		return best, true
	}
	return lowest, foundLowest
}

// Improve возвращает ID модели следующего уровня того же семейства.
// Для самой точной модели возвращает тот же ID.
func Improve(id string) string {
	info, ok := GetModel(id)
	if !ok {
		return id
	}

	next, found := ModelInfo{}, false
	for _, m := range Registry {
		if m.Engine != info.Engine || m.EnglishOnly != info.EnglishOnly || m.Language != info.Language {
			continue
		}
		// Кнопка "улучшить" не выходит за Accurate
		if m.Tier <= info.Tier || m.Tier > TierAccurate {
			continue
		}
		if !found || m.Tier < next.Tier {
			next, found = m, true
		}
	}

	if !found {
		return id
	}
	return next.ID
}
