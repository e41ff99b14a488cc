// Package audio предоставляет запись аудио с микрофона во временный WAV файл.
package audio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate - частота дискретизации (требование Whisper).
	SampleRate = 16000
	// Channels - количество каналов (mono).
	Channels = 1
	// FramesPerBuffer - размер буфера.
	FramesPerBuffer = 1024
	// MinSamples - минимальное количество сэмплов (200ms при 16kHz).
	// Whisper требует минимум 100ms, добавляем запас.
	MinSamples = SampleRate / 5
	// levelWindow - сколько последних сэмплов держим для индикатора уровня.
	levelWindow = SampleRate / 2
)

// Recorder записывает аудио с микрофона в WAV файл.
type Recorder struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []float32
	writer  *WAVWriter
	recent  []float32
	running bool
	done    chan struct{}
	err     error
}

// New инициализирует portaudio и создаёт Recorder.
func New() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации portaudio: %w", err)
	}

	return &Recorder{
		buffer: make([]float32, FramesPerBuffer),
	}, nil
}

// Start начинает запись в файл path. Повторный вызов во время записи ничего не делает.
func (r *Recorder) Start(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	writer, err := CreateWAV(path)
	if err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, r.buffer)
	if err != nil {
		writer.Close()
		return fmt.Errorf("не удалось открыть микрофон: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		writer.Close()
		return fmt.Errorf("не удалось запустить запись: %w", err)
	}

	r.stream = stream
	r.writer = writer
	r.recent = r.recent[:0]
	r.err = nil
	r.done = make(chan struct{})
	r.running = true

	log.Printf("Запись начата: %s", path)
	go r.recordLoop(stream, r.done)

	return nil
}

func (r *Recorder) recordLoop(stream *portaudio.Stream, done chan struct{}) {
	defer close(done)

	for r.IsRecording() {
		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		if r.running {
			if err := r.writer.Write(r.buffer); err != nil && r.err == nil {
				r.err = err
			}
			r.recent = append(r.recent, r.buffer...)
			if over := len(r.recent) - levelWindow; over > 0 {
				r.recent = append(r.recent[:0], r.recent[over:]...)
			}
		}
		r.mu.Unlock()
	}
}

// Stop останавливает запись и закрывает файл.
// Если запись слишком короткая, дописывает тишину для Whisper.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}

	r.running = false
	stream := r.stream
	r.stream = nil
	done := r.done
	r.mu.Unlock()

	// recordLoop проверяет running каждые 10ms
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
	}

	if stream != nil {
		stream.Stop()
		stream.Close()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	writer := r.writer
	r.writer = nil
	writeErr := r.err

	if n := writer.Samples(); n < MinSamples && writeErr == nil {
		writeErr = writer.Write(make([]float32, MinSamples-n))
	}

	log.Printf("Запись остановлена: %d сэмплов (%s)", writer.Samples(),
		time.Duration(writer.Samples())*time.Second/SampleRate)

	if err := writer.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("ошибка записи WAV: %w", writeErr)
	}
	return nil
}

// Close освобождает ресурсы.
func (r *Recorder) Close() {
	if err := r.Stop(); err != nil {
		log.Printf("Ошибка остановки записи: %v", err)
	}
	portaudio.Terminate()
}

// IsRecording возвращает true если идёт запись.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// GetSamples возвращает копию последних сэмплов без остановки записи.
func (r *Recorder) GetSamples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || len(r.recent) == 0 {
		return nil
	}

	samples := make([]float32, len(r.recent))
	copy(samples, r.recent)
	return samples
}

// Level возвращает пиковый уровень последних сэмплов в диапазоне [0, 1].
func Level(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak > 1 {
		peak = 1
	}
	return peak
}
