package speech

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskRecognizer реализует Recognizer через Vosk.
type VoskRecognizer struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

// voskResult структура для парсинга JSON результата от Vosk.
type voskResult struct {
	Text string `json:"text"`
}

// NewVosk создаёт VoskRecognizer из директории модели.
func NewVosk(modelPath string) (*VoskRecognizer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("модель Vosk не найдена: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки модели Vosk: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, 16000.0)
	if err != nil {
		model.Free()
		return nil, err
	}

	return &VoskRecognizer{
		model:      model,
		recognizer: rec,
	}, nil
}

// Name возвращает название движка.
func (v *VoskRecognizer) Name() string {
	return "vosk"
}

// Transcribe распознаёт речь. Язык задаётся моделью, перевод Vosk не умеет.
func (v *VoskRecognizer) Transcribe(samples []float32, lang string, translate bool) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer == nil {
		return "", ErrModelNotLoaded
	}
	if translate {
		log.Printf("Vosk: перевод не поддерживается, возвращаю исходный текст")
	}

	v.recognizer.AcceptWaveform(pcm16(samples))
	resultJSON := v.recognizer.FinalResult()
	v.recognizer.Reset()

	return parseVoskResult([]byte(resultJSON))
}

// pcm16 конвертирует float32 [-1, 1] в little-endian int16.
func pcm16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(sample*math.MaxInt16)))
	}
	return out
}

func parseVoskResult(data []byte) (string, error) {
	var result voskResult
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("ошибка разбора ответа Vosk: %w", err)
	}
	return result.Text, nil
}

// Close освобождает ресурсы.
func (v *VoskRecognizer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}

	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
