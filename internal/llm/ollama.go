// Package llm исправляет распознанный текст локальной LLM через Ollama.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOllamaURL = "http://localhost:11434"
	DefaultModel     = "qwen2.5:0.5b"
	DefaultTimeout   = 10 * time.Second
)

// Corrector исправляет ошибки распознавания через Ollama.
type Corrector struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config конфигурация корректора.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// New создаёт корректор, пустые поля заменяются значениями по умолчанию.
func New(cfg Config) *Corrector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = DefaultOllamaURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Corrector{
		baseURL: url,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// generateRequest запрос к /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateResponse ответ от /api/generate.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func prompt(text, lang string) string {
	hint := ""
	if lang != "" && lang != "auto" {
		hint = fmt.Sprintf(" Язык текста: %s.", lang)
	}
	return fmt.Sprintf(`Исправь ошибки распознавания речи в тексте.%s Верни ТОЛЬКО исправленный текст без пояснений:

%s`, hint, text)
}

// Correct исправляет текст. При ошибке возвращается исходный текст вместе с ошибкой.
func (c *Corrector) Correct(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	req := generateRequest{
		Model:  c.model,
		Prompt: prompt(text, lang),
		Options: generateOptions{
			Temperature: 0.1,
			NumPredict:  500,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return text, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return text, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("LLM: отправка запроса на исправление (%d символов)", len(text))
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return text, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return text, fmt.Errorf("ollama error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return text, fmt.Errorf("decode response: %w", err)
	}

	if result.Error != "" {
		return text, fmt.Errorf("ollama: %s", result.Error)
	}

	corrected := strings.TrimSpace(result.Response)
	if corrected == "" {
		return text, nil
	}

	log.Printf("LLM: исправлено за %v: %q -> %q", time.Since(start).Round(time.Millisecond), text, corrected)
	return corrected, nil
}

// IsAvailable проверяет доступность Ollama.
func (c *Corrector) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Model возвращает модель Ollama.
func (c *Corrector) Model() string {
	return c.model
}
