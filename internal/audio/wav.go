package audio

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat возвращается для WAV, который движки не примут.
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат аудио")

const bitDepth = 16

// WAVWriter потоково пишет mono float32 сэмплы в 16-bit PCM WAV.
type WAVWriter struct {
	file    *os.File
	enc     *wav.Encoder
	buf     *goaudio.IntBuffer
	samples int
}

// CreateWAV создаёт (или перезаписывает) WAV файл.
func CreateWAV(path string) (*WAVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать WAV файл: %w", err)
	}

	return &WAVWriter{
		file: file,
		enc:  wav.NewEncoder(file, SampleRate, bitDepth, Channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write дописывает сэмплы [-1, 1] в файл.
func (w *WAVWriter) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		w.buf.Data[i] = int(s * 32767)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return err
	}
	w.samples += len(samples)
	return nil
}

// Samples возвращает количество записанных сэмплов.
func (w *WAVWriter) Samples() int {
	return w.samples
}

// Path возвращает путь к файлу.
func (w *WAVWriter) Path() string {
	return w.file.Name()
}

// Close обновляет заголовок и закрывает файл.
func (w *WAVWriter) Close() error {
	encErr := w.enc.Close()
	fileErr := w.file.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}

// WriteWAV записывает сэмплы в файл целиком.
func WriteWAV(path string, samples []float32) error {
	w, err := CreateWAV(path)
	if err != nil {
		return err
	}
	if err := w.Write(samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadWAV читает PCM WAV 16 kHz и возвращает mono float32 сэмплы.
// Многоканальное аудио сводится в моно усреднением.
func ReadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s не является WAV файлом", ErrUnsupportedFormat, path)
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: поддерживается только PCM", ErrUnsupportedFormat)
	}
	if dec.SampleRate != SampleRate {
		return nil, fmt.Errorf("%w: частота %d Гц, нужна %d Гц", ErrUnsupportedFormat, dec.SampleRate, SampleRate)
	}
	if dec.BitDepth < 16 {
		return nil, fmt.Errorf("%w: глубина %d бит", ErrUnsupportedFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения WAV: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		channels = 1
	}
	scale := float32(int64(1) << (dec.BitDepth - 1))

	out := make([]float32, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i+c]
		}
		out = append(out, float32(sum)/float32(channels)/scale)
	}

	return out, nil
}
