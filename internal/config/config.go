// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyF      Key = "f"
	KeyG      Key = "g"
	KeyH      Key = "h"
	KeyI      Key = "i"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyM      Key = "m"
	KeyN      Key = "n"
	KeyO      Key = "o"
	KeyP      Key = "p"
	KeyQ      Key = "q"
	KeyR      Key = "r"
	KeyS      Key = "s"
	KeyT      Key = "t"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyX      Key = "x"
	KeyY      Key = "y"
	KeyZ      Key = "z"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// HotkeyConfig хранит настройки горячей клавиши.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	result := ""
	for _, m := range h.Modifiers {
		if result != "" {
			result += "+"
		}
		result += string(m)
	}
	if result != "" {
		result += "+"
	}
	result += string(h.Key)
	return result
}

// ParseHotkey разбирает строку вида "ctrl+shift+space".
func ParseHotkey(s string) (HotkeyConfig, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return HotkeyConfig{}, fmt.Errorf("пустая горячая клавиша: %q", s)
	}

	var hk HotkeyConfig
	for _, p := range parts[:len(parts)-1] {
		mod := Modifier(strings.TrimSpace(p))
		if !slices.Contains(AvailableModifiers(), mod) {
			return HotkeyConfig{}, fmt.Errorf("неизвестный модификатор %q в %q", p, s)
		}
		if !slices.Contains(hk.Modifiers, mod) {
			hk.Modifiers = append(hk.Modifiers, mod)
		}
	}

	key := Key(strings.TrimSpace(parts[len(parts)-1]))
	if !slices.Contains(AvailableKeys(), key) {
		return HotkeyConfig{}, fmt.Errorf("неизвестная клавиша %q в %q", key, s)
	}
	hk.Key = key
	return hk, nil
}

// LLMConfig хранит настройки LLM (Ollama) для исправления текста.
type LLMConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// configData структура для сериализации.
type configData struct {
	Language      string       `json:"language"`
	Translate     bool         `json:"translate"`
	EnglishOnly   bool         `json:"english_only"`
	Backend       string       `json:"backend,omitempty"`
	ModelID       string       `json:"model_id,omitempty"`
	ModelsDir     string       `json:"models_dir,omitempty"`
	UILanguage    string       `json:"ui_language,omitempty"`
	Notifications bool         `json:"notifications"`
	Hotkey        HotkeyConfig `json:"hotkey"`
	LLM           LLMConfig    `json:"llm,omitempty"`
}

// Переменные окружения.
const (
	EnvConfigPath = "WHISPER_INPUT_CONFIG"
	EnvModelsDir  = "WHISPER_INPUT_MODELS_DIR"
)

// Config хранит настройки приложения.
type Config struct {
	mu             sync.RWMutex
	data           configData
	configPath     string
	onHotkeyChange func(HotkeyConfig)
}

func defaults() configData {
	return configData{
		Language:      "auto", // auto для смешанного русского/английского
		Backend:       "whisper",
		UILanguage:    "ru",
		Notifications: true,
		Hotkey: HotkeyConfig{
			Modifiers: []Modifier{ModCtrl, ModShift},
			Key:       KeySpace,
		},
		LLM: LLMConfig{
			URL:   "http://localhost:11434",
			Model: "qwen2.5:0.5b",
		},
	}
}

// New создаёт конфигурацию из WHISPER_INPUT_CONFIG или config.json рядом с бинарником.
func New() *Config {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return NewWithPath(path)
	}

	path := ""
	// Определяем путь к файлу конфигурации рядом с бинарником
	execPath, err := os.Executable()
	if err == nil {
		execPath, err = filepath.EvalSymlinks(execPath)
		if err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}

	return NewWithPath(path)
}

// NewWithPath создаёт конфигурацию с файлом path. Пустой path - без сохранения.
func NewWithPath(path string) *Config {
	c := &Config{
		data:       defaults(),
		configPath: path,
	}
	c.load()
	return c
}

// LoadEnv подгружает переменные окружения из .env, если файл есть.
func LoadEnv() error {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("ошибка загрузки %s: %w", envPath, err)
		}
		log.Printf("Переменные окружения загружены из %s", envPath)
		break
	}
	return nil
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.configPath
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("Ошибка чтения конфигурации %s: %v", c.configPath, err)
		return
	}

	if cfg.Hotkey.Key == "" {
		cfg.Hotkey = c.data.Hotkey
	}
	if cfg.UILanguage == "" {
		cfg.UILanguage = c.data.UILanguage
	}
	if cfg.Backend == "" {
		cfg.Backend = c.data.Backend
	}
	if cfg.Language == "" {
		cfg.Language = c.data.Language
	}
	c.data = cfg
}

// save сохраняет конфигурацию в файл. Вызывается под c.mu.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	data, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return
	}

	if err := os.WriteFile(c.configPath, data, 0644); err != nil {
		log.Printf("Не удалось сохранить конфигурацию: %v", err)
	}
}

// update меняет настройки под блокировкой и сохраняет их.
func (c *Config) update(fn func(d *configData)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.data)
	c.save()
}

// SetLanguage устанавливает язык распознавания.
func (c *Config) SetLanguage(lang string) {
	c.update(func(d *configData) { d.Language = lang })
}

// Language возвращает текущий язык распознавания.
func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Language
}

// SetTranslate включает перевод на английский.
func (c *Config) SetTranslate(enabled bool) {
	c.update(func(d *configData) { d.Translate = enabled })
}

// Translate возвращает true если включён перевод на английский.
func (c *Config) Translate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Translate
}

// SetEnglishOnly выбирает .en модели.
func (c *Config) SetEnglishOnly(enabled bool) {
	c.update(func(d *configData) { d.EnglishOnly = enabled })
}

// EnglishOnly возвращает true если выбраны .en модели.
func (c *Config) EnglishOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.EnglishOnly
}

// Backend возвращает движок распознавания (whisper, onnx, vosk).
func (c *Config) Backend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Backend
}

// SetBackend устанавливает движок распознавания.
func (c *Config) SetBackend(backend string) {
	c.update(func(d *configData) { d.Backend = backend })
}

// SetNotifications включает/выключает уведомления.
func (c *Config) SetNotifications(enabled bool) {
	c.update(func(d *configData) { d.Notifications = enabled })
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Notifications = !c.data.Notifications
	c.save()
	return c.data.Notifications
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Notifications
}

// Hotkey возвращает текущую горячую клавишу.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Hotkey
}

// SetHotkey устанавливает горячую клавишу.
func (c *Config) SetHotkey(hk HotkeyConfig) {
	c.mu.Lock()
	c.data.Hotkey = hk
	callback := c.onHotkeyChange
	c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(hk)
	}
}

// OnHotkeyChange устанавливает callback для изменения горячей клавиши.
func (c *Config) OnHotkeyChange(fn func(HotkeyConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHotkeyChange = fn
}

// ModelID возвращает ID текущей модели распознавания.
func (c *Config) ModelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.ModelID
}

// SetModelID устанавливает ID модели распознавания.
func (c *Config) SetModelID(id string) {
	c.update(func(d *configData) { d.ModelID = id })
}

// ModelsDir возвращает директорию моделей. WHISPER_INPUT_MODELS_DIR важнее файла.
func (c *Config) ModelsDir() string {
	if dir := os.Getenv(EnvModelsDir); dir != "" {
		return dir
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.ModelsDir
}

// LLM возвращает текущие настройки LLM.
func (c *Config) LLM() LLMConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.LLM
}

// SetLLM устанавливает настройки LLM.
func (c *Config) SetLLM(cfg LLMConfig) {
	c.update(func(d *configData) { d.LLM = cfg })
}

// SetLLMEnabled включает/выключает LLM коррекцию.
func (c *Config) SetLLMEnabled(enabled bool) {
	c.update(func(d *configData) { d.LLM.Enabled = enabled })
}

// LLMEnabled возвращает true если LLM коррекция включена.
func (c *Config) LLMEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.LLM.Enabled
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}

// AvailableKeys возвращает список доступных клавиш.
func AvailableKeys() []Key {
	return []Key{
		KeySpace, KeyReturn, KeyTab,
		KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM,
		KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12,
	}
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.UILanguage
}

// SetUILanguage устанавливает язык интерфейса.
func (c *Config) SetUILanguage(lang string) {
	c.update(func(d *configData) { d.UILanguage = lang })
}
