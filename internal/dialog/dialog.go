// Package dialog предоставляет GUI диалоги (zenity).
package dialog

import (
	"errors"
	"strings"

	"github.com/ncruces/zenity"

	"whisper-input/internal/config"
	"whisper-input/internal/i18n"
	"whisper-input/internal/models"
)

// ErrNoModifier - в диалоге не выбран ни один модификатор.
var ErrNoModifier = errors.New("не выбран модификатор")

// AskDownload спрашивает, скачать ли модель. Возвращает true при согласии.
func AskDownload(info models.ModelInfo) bool {
	err := zenity.Question(
		i18n.Tf("dialog_download_text", info.Name, info.Size>>20),
		zenity.Title(i18n.T("dialog_download_title")),
		zenity.OKLabel(i18n.T("dialog_download_yes")),
		zenity.CancelLabel(i18n.T("dialog_download_no")),
	)
	return err == nil
}

// modifierLabel подпись модификатора в списке.
func modifierLabel(m config.Modifier) string {
	if m == config.ModSuper {
		return "Super (Win/Cmd)"
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// keyLabel подпись клавиши в списке.
func keyLabel(k config.Key) string {
	switch k {
	case config.KeySpace:
		return "Space"
	case config.KeyReturn:
		return "Return"
	case config.KeyTab:
		return "Tab"
	default:
		return strings.ToUpper(string(k))
	}
}

// SelectHotkey открывает диалог выбора горячей клавиши.
// Возвращает выбранную конфигурацию или ошибку если пользователь отменил.
func SelectHotkey(current config.HotkeyConfig) (config.HotkeyConfig, error) {
	// Шаг 1: модификаторы
	mods := config.AvailableModifiers()
	modOptions := make([]string, len(mods))
	for i, m := range mods {
		modOptions[i] = modifierLabel(m)
	}

	currentMods := make([]string, 0, len(current.Modifiers))
	for _, m := range current.Modifiers {
		currentMods = append(currentMods, modifierLabel(m))
	}

	selectedMods, err := zenity.ListMultiple(
		i18n.T("dialog_hotkey_mods"),
		modOptions,
		zenity.Title(i18n.T("dialog_hotkey_mods_title")),
		zenity.DefaultItems(currentMods...),
	)
	if err != nil {
		return current, err
	}

	newMods, err := parseModifiers(selectedMods)
	if err != nil {
		return current, err
	}

	// Шаг 2: клавиша
	keys := config.AvailableKeys()
	keyOptions := make([]string, len(keys))
	for i, k := range keys {
		keyOptions[i] = keyLabel(k)
	}

	selectedKey, err := zenity.List(
		i18n.T("dialog_hotkey_key"),
		keyOptions,
		zenity.Title(i18n.T("dialog_hotkey_key_title")),
		zenity.DefaultItems(keyLabel(current.Key)),
	)
	if err != nil {
		return current, err
	}

	newKey := current.Key
	for _, k := range keys {
		if keyLabel(k) == selectedKey {
			newKey = k
			break
		}
	}

	return config.HotkeyConfig{
		Modifiers: newMods,
		Key:       newKey,
	}, nil
}

func parseModifiers(labels []string) ([]config.Modifier, error) {
	if len(labels) == 0 {
		return nil, ErrNoModifier
	}

	mods := make([]config.Modifier, 0, len(labels))
	for _, label := range labels {
		for _, m := range config.AvailableModifiers() {
			if modifierLabel(m) == label {
				mods = append(mods, m)
				break
			}
		}
	}
	if len(mods) == 0 {
		return nil, ErrNoModifier
	}
	return mods, nil
}

// ShowInfo показывает информационное сообщение.
func ShowInfo(title, message string) {
	zenity.Info(message, zenity.Title(title))
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	zenity.Error(message, zenity.Title(title))
}
