package speech

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Специальные токены Whisper (id конца текста зависит от варианта модели).
const (
	eotMultilingual = 50257
	eotEnglish      = 50256
	eotToken        = "<|endoftext|>"
)

// vocab отображает id токенов Whisper в байтовые строки.
type vocab struct {
	tokens map[int]string
	eot    int
}

// loadVocab читает vocab.json токенизатора Whisper ({"token": id}).
func loadVocab(path string, englishOnly bool) (*vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseVocab(data, englishOnly)
}

func parseVocab(data []byte, englishOnly bool) (*vocab, error) {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ошибка разбора словаря: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("словарь пуст")
	}

	v := &vocab{tokens: make(map[int]string, len(raw)), eot: eotMultilingual}
	if englishOnly {
		v.eot = eotEnglish
	}

	decoder := byteDecoder()
	for token, id := range raw {
		if token == eotToken {
			v.eot = id
		}
		v.tokens[id] = decodeBytes(token, decoder)
	}

	return v, nil
}

// Decode собирает текст до конца транскрипта, служебные токены пропускаются.
func (v *vocab) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		if id == v.eot {
			break
		}
		if id > v.eot || id < 0 {
			continue
		}
		sb.WriteString(v.tokens[id])
	}
	return strings.TrimSpace(sb.String())
}

// byteDecoder - обратная таблица bytes_to_unicode из GPT-2.
func byteDecoder() map[rune]byte {
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}

	decoder := make(map[rune]byte, 256)
	next := 0
	for b := 0; b < 256; b++ {
		if printable(b) {
			decoder[rune(b)] = byte(b)
			continue
		}
		decoder[rune(256+next)] = byte(b)
		next++
	}
	return decoder
}

func decodeBytes(token string, decoder map[rune]byte) string {
	out := make([]byte, 0, len(token))
	for _, r := range token {
		if b, ok := decoder[r]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, string(r)...)
	}
	return string(out)
}
