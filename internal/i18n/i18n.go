// Package i18n хранит строки интерфейса на нескольких языках.
package i18n

import (
	"fmt"
	"sync"
)

// Language язык интерфейса.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
	DE Language = "de"
)

var (
	mu      sync.RWMutex
	current = RU
)

var translations = map[Language]map[string]string{
	RU: {
		// App
		"app_name":    "Whisper Input",
		"app_tooltip": "Whisper Input - голосовой ввод",

		// Tray menu
		"tray_ready":              "Готов к работе",
		"tray_recording":          "Запись...",
		"tray_processing":         "Распознавание...",
		"tray_loading":            "Загрузка модели...",
		"tray_record":             "Запись / стоп",
		"tray_record_hint":        "Начать или остановить запись",
		"tray_improve":            "Улучшить",
		"tray_improve_hint":       "Распознать последнюю запись точнее",
		"tray_quality":            "Качество",
		"tray_tier_fast":          "Быстро",
		"tray_tier_balanced":      "Сбалансированно",
		"tray_tier_accurate":      "Точно",
		"tray_tier_best":          "Максимум",
		"tray_language":           "Язык",
		"tray_lang_auto":          "Авто",
		"tray_lang_en":            "English",
		"tray_lang_de":            "Deutsch",
		"tray_lang_ru":            "Русский",
		"tray_lang_en_model":      "English (модель .en)",
		"tray_translate":          "Перевод на английский",
		"tray_translate_hint":     "Переводить распознанный текст",
		"tray_keys":               "Клавиши",
		"tray_space":              "Пробел",
		"tray_return":             "Ввод",
		"tray_delete_word":        "Удалить слово",
		"tray_llm":                "Коррекция LLM",
		"tray_llm_hint":           "Исправлять текст через Ollama",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_hotkey":             "Горячая клавиша...",
		"tray_hotkey_hint":        "Изменить горячую клавишу записи",
		"tray_ui_language":        "Язык интерфейса",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_recording":       "Запись...",
		"notify_recording_hint":  "Говорите в микрофон",
		"notify_processing":      "Распознаю...",
		"notify_processing_hint": "Пожалуйста, подождите",
		"notify_done":            "Готово",
		"notify_empty":           "Не удалось распознать",
		"notify_empty_hint":      "Попробуйте ещё раз",
		"notify_error":           "Ошибка",
		"notify_ready":           "Whisper Input готов к работе",
		"notify_copied":          "Текст скопирован в буфер обмена",

		// Indicator window
		"indicator_loading":     "Загрузка модели...",
		"indicator_downloading": "Скачивание модели...",
		"indicator_processing":  "Распознавание речи...",
		"indicator_recording":   "Запись",

		// Dialogs
		"dialog_download_title":    "Скачать модель?",
		"dialog_download_text":     "Модель %s (%d МБ) не скачана. Скачать сейчас?",
		"dialog_download_yes":      "Скачать",
		"dialog_download_no":       "Отмена",
		"dialog_hotkey_mods":       "Выберите модификаторы:",
		"dialog_hotkey_mods_title": "Горячая клавиша - модификаторы",
		"dialog_hotkey_key":        "Выберите клавишу:",
		"dialog_hotkey_key_title":  "Горячая клавиша - клавиша",
		"dialog_hotkey_need_mod":   "Необходимо выбрать хотя бы один модификатор",

		// Errors
		"error_model_loading":        "Модель ещё загружается...",
		"error_model_not_loaded":     "Модель не загружена",
		"error_model_not_downloaded": "Модель не скачана",
		"error_model_manual":         "Положите модель в папку моделей вручную",
		"error_no_recording":         "Нет записи для распознавания",
		"error_recording":            "Ошибка записи",
		"error_recognition":          "Ошибка распознавания",
		"error_input":                "Ошибка ввода",
		"error_hotkey_register":      "Не удалось зарегистрировать горячую клавишу",
		"error_model_load":           "Не удалось загрузить модель",
		"error_download":             "Не удалось скачать модель",
		"error_clipboard":            "Ошибка копирования в буфер обмена",
		"error_llm_unavailable":      "Ollama недоступна",

		// Success messages
		"success_model_loaded": "Модель загружена",
	},

	EN: {
		// App
		"app_name":    "Whisper Input",
		"app_tooltip": "Whisper Input - voice input",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_recording":          "Recording...",
		"tray_processing":         "Transcribing...",
		"tray_loading":            "Loading model...",
		"tray_record":             "Record / stop",
		"tray_record_hint":        "Start or stop recording",
		"tray_improve":            "Improve",
		"tray_improve_hint":       "Re-transcribe the last recording with a better model",
		"tray_quality":            "Quality",
		"tray_tier_fast":          "Fast",
		"tray_tier_balanced":      "Balanced",
		"tray_tier_accurate":      "Accurate",
		"tray_tier_best":          "Best",
		"tray_language":           "Language",
		"tray_lang_auto":          "Auto",
		"tray_lang_en":            "English",
		"tray_lang_de":            "Deutsch",
		"tray_lang_ru":            "Русский",
		"tray_lang_en_model":      "English (.en model)",
		"tray_translate":          "Translate to English",
		"tray_translate_hint":     "Translate the transcription",
		"tray_keys":               "Keys",
		"tray_space":              "Space",
		"tray_return":             "Return",
		"tray_delete_word":        "Delete word",
		"tray_llm":                "LLM correction",
		"tray_llm_hint":           "Fix the text with Ollama",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_hotkey":             "Hotkey...",
		"tray_hotkey_hint":        "Change the recording hotkey",
		"tray_ui_language":        "Interface language",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_recording":       "Recording...",
		"notify_recording_hint":  "Speak into the microphone",
		"notify_processing":      "Transcribing...",
		"notify_processing_hint": "Please wait",
		"notify_done":            "Done",
		"notify_empty":           "Could not recognize",
		"notify_empty_hint":      "Please try again",
		"notify_error":           "Error",
		"notify_ready":           "Whisper Input is ready",
		"notify_copied":          "Text copied to clipboard",

		// Indicator window
		"indicator_loading":     "Loading model...",
		"indicator_downloading": "Downloading model...",
		"indicator_processing":  "Transcribing speech...",
		"indicator_recording":   "Recording",

		// Dialogs
		"dialog_download_title":    "Download model?",
		"dialog_download_text":     "Model %s (%d MB) is not downloaded. Download now?",
		"dialog_download_yes":      "Download",
		"dialog_download_no":       "Cancel",
		"dialog_hotkey_mods":       "Select modifiers:",
		"dialog_hotkey_mods_title": "Hotkey - modifiers",
		"dialog_hotkey_key":        "Select a key:",
		"dialog_hotkey_key_title":  "Hotkey - key",
		"dialog_hotkey_need_mod":   "Select at least one modifier",

		// Errors
		"error_model_loading":        "Model is still loading...",
		"error_model_not_loaded":     "Model not loaded",
		"error_model_not_downloaded": "Model not downloaded",
		"error_model_manual":         "Place the model in the models folder manually",
		"error_no_recording":         "No recording to transcribe",
		"error_recording":            "Recording error",
		"error_recognition":          "Recognition error",
		"error_input":                "Input error",
		"error_hotkey_register":      "Could not register hotkey",
		"error_model_load":           "Could not load model",
		"error_download":             "Could not download model",
		"error_clipboard":            "Clipboard copy error",
		"error_llm_unavailable":      "Ollama is not reachable",

		// Success messages
		"success_model_loaded": "Model loaded",
	},

	DE: {
		// App
		"app_name":    "Whisper Input",
		"app_tooltip": "Whisper Input - Spracheingabe",

		// Tray menu
		"tray_ready":              "Bereit",
		"tray_recording":          "Aufnahme...",
		"tray_processing":         "Transkription...",
		"tray_loading":            "Modell wird geladen...",
		"tray_record":             "Aufnahme / Stopp",
		"tray_record_hint":        "Aufnahme starten oder beenden",
		"tray_improve":            "Verbessern",
		"tray_improve_hint":       "Letzte Aufnahme genauer transkribieren",
		"tray_quality":            "Qualität",
		"tray_tier_fast":          "Schnell",
		"tray_tier_balanced":      "Ausgewogen",
		"tray_tier_accurate":      "Genau",
		"tray_tier_best":          "Beste",
		"tray_language":           "Sprache",
		"tray_lang_auto":          "Automatisch",
		"tray_lang_en":            "English",
		"tray_lang_de":            "Deutsch",
		"tray_lang_ru":            "Русский",
		"tray_lang_en_model":      "English (.en-Modell)",
		"tray_translate":          "Ins Englische übersetzen",
		"tray_translate_hint":     "Transkription übersetzen",
		"tray_keys":               "Tasten",
		"tray_space":              "Leerzeichen",
		"tray_return":             "Eingabe",
		"tray_delete_word":        "Wort löschen",
		"tray_llm":                "LLM-Korrektur",
		"tray_llm_hint":           "Text mit Ollama korrigieren",
		"tray_notifications":      "Benachrichtigungen",
		"tray_notifications_hint": "Benachrichtigungen anzeigen",
		"tray_hotkey":             "Tastenkürzel...",
		"tray_hotkey_hint":        "Tastenkürzel für die Aufnahme ändern",
		"tray_ui_language":        "Oberflächensprache",
		"tray_quit":               "Beenden",
		"tray_quit_hint":          "Anwendung schließen",

		// Notifications
		"notify_recording":       "Aufnahme...",
		"notify_recording_hint":  "Sprechen Sie ins Mikrofon",
		"notify_processing":      "Transkribiere...",
		"notify_processing_hint": "Bitte warten",
		"notify_done":            "Fertig",
		"notify_empty":           "Nichts erkannt",
		"notify_empty_hint":      "Bitte erneut versuchen",
		"notify_error":           "Fehler",
		"notify_ready":           "Whisper Input ist bereit",
		"notify_copied":          "Text in die Zwischenablage kopiert",

		// Indicator window
		"indicator_loading":     "Modell wird geladen...",
		"indicator_downloading": "Modell wird heruntergeladen...",
		"indicator_processing":  "Sprache wird transkribiert...",
		"indicator_recording":   "Aufnahme",

		// Dialogs
		"dialog_download_title":    "Modell herunterladen?",
		"dialog_download_text":     "Modell %s (%d MB) ist nicht vorhanden. Jetzt herunterladen?",
		"dialog_download_yes":      "Herunterladen",
		"dialog_download_no":       "Abbrechen",
		"dialog_hotkey_mods":       "Modifikatoren wählen:",
		"dialog_hotkey_mods_title": "Tastenkürzel - Modifikatoren",
		"dialog_hotkey_key":        "Taste wählen:",
		"dialog_hotkey_key_title":  "Tastenkürzel - Taste",
		"dialog_hotkey_need_mod":   "Mindestens einen Modifikator wählen",

		// Errors
		"error_model_loading":        "Modell wird noch geladen...",
		"error_model_not_loaded":     "Modell nicht geladen",
		"error_model_not_downloaded": "Modell nicht heruntergeladen",
		"error_model_manual":         "Modell manuell in den Modellordner legen",
		"error_no_recording":         "Keine Aufnahme vorhanden",
		"error_recording":            "Aufnahmefehler",
		"error_recognition":          "Erkennungsfehler",
		"error_input":                "Eingabefehler",
		"error_hotkey_register":      "Tastenkürzel konnte nicht registriert werden",
		"error_model_load":           "Modell konnte nicht geladen werden",
		"error_download":             "Modell konnte nicht heruntergeladen werden",
		"error_clipboard":            "Fehler beim Kopieren",
		"error_llm_unavailable":      "Ollama ist nicht erreichbar",

		// Success messages
		"success_model_loaded": "Modell geladen",
	},
}

// T возвращает строку для ключа на текущем языке.
// Если перевода нет, берётся английский вариант, затем сам ключ.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if s, ok := translations[current][key]; ok {
		return s
	}
	if s, ok := translations[EN][key]; ok {
		return s
	}
	return key
}

// Tf форматирует строку для ключа.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// SetLanguage устанавливает язык интерфейса. Неизвестный язык игнорируется.
func SetLanguage(lang Language) {
	if _, ok := translations[lang]; !ok {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage возвращает текущий язык интерфейса.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages возвращает поддерживаемые языки.
func AvailableLanguages() []Language {
	return []Language{RU, EN, DE}
}

// LanguageName возвращает имя языка для меню.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	case DE:
		return "Deutsch"
	default:
		return string(lang)
	}
}
