// Package tray предоставляет системный трей с меню голосовой клавиатуры.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"whisper-input/internal/i18n"
	"whisper-input/internal/icons"
	"whisper-input/internal/models"
)

// State представляет состояние приложения для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateLoading
)

// LanguageOption пункт меню языка распознавания.
type LanguageOption struct {
	Key         string // ключ i18n
	Lang        string
	EnglishOnly bool
}

// Languages пункты меню языка.
var Languages = []LanguageOption{
	{Key: "tray_lang_auto", Lang: "auto"},
	{Key: "tray_lang_en", Lang: "en"},
	{Key: "tray_lang_de", Lang: "de"},
	{Key: "tray_lang_ru", Lang: "ru"},
	{Key: "tray_lang_en_model", Lang: "en", EnglishOnly: true},
}

// languageIndex находит пункт меню для настроек, по умолчанию "Авто".
func languageIndex(lang string, englishOnly bool) int {
	for i, opt := range Languages {
		if opt.Lang == lang && opt.EnglishOnly == englishOnly {
			return i
		}
	}
	return 0
}

var tierKeys = map[models.Tier]string{
	models.TierFast:     "tray_tier_fast",
	models.TierBalanced: "tray_tier_balanced",
	models.TierAccurate: "tray_tier_accurate",
	models.TierBest:     "tray_tier_best",
}

var tiers = []models.Tier{models.TierFast, models.TierBalanced, models.TierAccurate, models.TierBest}

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnRecord              func()
	OnImprove             func()
	OnTier                func(models.Tier)
	OnLanguage            func(lang string, englishOnly bool)
	OnTranslate           func(enabled bool)
	OnSpace               func()
	OnReturn              func()
	OnDeleteWord          func()
	OnLLMToggle           func() bool
	OnNotificationsToggle func() bool
	OnHotkeyClick         func()
	OnUILanguage          func(i18n.Language)
	OnQuit                func()
}

// Options начальное состояние переключателей меню.
type Options struct {
	Tier          models.Tier
	Language      string
	EnglishOnly   bool
	Translate     bool
	LLM           bool
	Notifications bool
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks
	opts      Options

	mu         sync.Mutex
	state      State
	status     *systray.MenuItem
	recordBtn  *systray.MenuItem
	improveBtn *systray.MenuItem
	quality    *systray.MenuItem
	tierItems  map[models.Tier]*systray.MenuItem
	language   *systray.MenuItem
	langItems  []*systray.MenuItem
	translate  *systray.MenuItem
	keys       *systray.MenuItem
	spaceBtn   *systray.MenuItem
	returnBtn  *systray.MenuItem
	deleteBtn  *systray.MenuItem
	llm        *systray.MenuItem
	notifyOn   *systray.MenuItem
	hotkeyBtn  *systray.MenuItem
	uiLang     *systray.MenuItem
	uiItems    map[i18n.Language]*systray.MenuItem
	quitBtn    *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, opts Options) *Tray {
	return &Tray{
		callbacks: callbacks,
		opts:      opts,
		tierItems: make(map[models.Tier]*systray.MenuItem),
		uiItems:   make(map[i18n.Language]*systray.MenuItem),
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady, onExit func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, onExit)
}

// onClick вызывает fn на каждый клик по пункту меню.
func onClick(item *systray.MenuItem, fn func()) {
	go func() {
		for range item.ClickedCh {
			fn()
		}
	}()
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *Tray) onReady() {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetIcon(icons.Idle)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()

	systray.AddSeparator()

	t.recordBtn = systray.AddMenuItem(i18n.T("tray_record"), i18n.T("tray_record_hint"))
	onClick(t.recordBtn, func() { call(t.callbacks.OnRecord) })

	t.improveBtn = systray.AddMenuItem(i18n.T("tray_improve"), i18n.T("tray_improve_hint"))
	onClick(t.improveBtn, func() { call(t.callbacks.OnImprove) })

	// Качество
	t.quality = systray.AddMenuItem(i18n.T("tray_quality"), "")
	for _, tier := range tiers {
		tier := tier
		item := t.quality.AddSubMenuItemCheckbox(i18n.T(tierKeys[tier]), "", tier == t.opts.Tier)
		t.tierItems[tier] = item
		onClick(item, func() {
			if t.callbacks.OnTier != nil {
				t.callbacks.OnTier(tier)
			}
		})
	}

	// Язык распознавания
	t.language = systray.AddMenuItem(i18n.T("tray_language"), "")
	selected := languageIndex(t.opts.Language, t.opts.EnglishOnly)
	for i, opt := range Languages {
		i, opt := i, opt
		item := t.language.AddSubMenuItemCheckbox(i18n.T(opt.Key), "", i == selected)
		t.langItems = append(t.langItems, item)
		onClick(item, func() {
			t.SetLanguage(opt.Lang, opt.EnglishOnly)
			if t.callbacks.OnLanguage != nil {
				t.callbacks.OnLanguage(opt.Lang, opt.EnglishOnly)
			}
		})
	}

	t.translate = systray.AddMenuItemCheckbox(i18n.T("tray_translate"), i18n.T("tray_translate_hint"), t.opts.Translate)
	onClick(t.translate, func() {
		enabled := !t.translate.Checked()
		setChecked(t.translate, enabled)
		if t.callbacks.OnTranslate != nil {
			t.callbacks.OnTranslate(enabled)
		}
	})

	// Клавиши
	t.keys = systray.AddMenuItem(i18n.T("tray_keys"), "")
	t.spaceBtn = t.keys.AddSubMenuItem(i18n.T("tray_space"), "")
	onClick(t.spaceBtn, func() { call(t.callbacks.OnSpace) })
	t.returnBtn = t.keys.AddSubMenuItem(i18n.T("tray_return"), "")
	onClick(t.returnBtn, func() { call(t.callbacks.OnReturn) })
	t.deleteBtn = t.keys.AddSubMenuItem(i18n.T("tray_delete_word"), "")
	onClick(t.deleteBtn, func() { call(t.callbacks.OnDeleteWord) })

	systray.AddSeparator()

	t.llm = systray.AddMenuItemCheckbox(i18n.T("tray_llm"), i18n.T("tray_llm_hint"), t.opts.LLM)
	onClick(t.llm, func() { toggle(t.llm, t.callbacks.OnLLMToggle) })

	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.opts.Notifications)
	onClick(t.notifyOn, func() { toggle(t.notifyOn, t.callbacks.OnNotificationsToggle) })

	t.hotkeyBtn = systray.AddMenuItem(i18n.T("tray_hotkey"), i18n.T("tray_hotkey_hint"))
	onClick(t.hotkeyBtn, func() { call(t.callbacks.OnHotkeyClick) })

	t.uiLang = systray.AddMenuItem(i18n.T("tray_ui_language"), "")
	for _, lang := range i18n.AvailableLanguages() {
		lang := lang
		item := t.uiLang.AddSubMenuItemCheckbox(i18n.LanguageName(lang), "", lang == i18n.GetLanguage())
		t.uiItems[lang] = item
		onClick(item, func() {
			i18n.SetLanguage(lang)
			if t.callbacks.OnUILanguage != nil {
				t.callbacks.OnUILanguage(lang)
			}
			t.RefreshUI()
		})
	}

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))
	onClick(t.quitBtn, func() {
		call(t.callbacks.OnQuit)
		systray.Quit()
	})
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func toggle(item *systray.MenuItem, fn func() bool) {
	if fn != nil {
		setChecked(item, fn())
	}
}

// SetState устанавливает состояние приложения и обновляет иконку.
func (t *Tray) SetState(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.applyState()
}

// applyState вызывается под t.mu.
func (t *Tray) applyState() {
	icon, key := icons.Idle, "tray_ready"
	switch t.state {
	case StateRecording:
		icon, key = icons.Recording, "tray_recording"
	case StateProcessing:
		icon, key = icons.Processing, "tray_processing"
	case StateLoading:
		icon, key = icons.Loading, "tray_loading"
	}

	systray.SetIcon(icon)
	systray.SetTooltip(i18n.T("app_name") + " - " + i18n.T(key))
	if t.status != nil {
		t.status.SetTitle(i18n.T(key))
	}

	// Пока идёт работа, выбор модели и языка недоступен
	busy := t.state == StateProcessing || t.state == StateLoading
	for _, item := range []*systray.MenuItem{t.improveBtn, t.quality, t.language} {
		if item == nil {
			continue
		}
		if busy || (item == t.improveBtn && t.state == StateRecording) {
			item.Disable()
		} else {
			item.Enable()
		}
	}
}

// SetTier отмечает уровень качества загруженной модели.
func (t *Tray) SetTier(tier models.Tier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Tier = tier
	for tr, item := range t.tierItems {
		setChecked(item, tr == tier)
	}
}

// SetLanguage отмечает выбранный язык.
func (t *Tray) SetLanguage(lang string, englishOnly bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Language, t.opts.EnglishOnly = lang, englishOnly
	selected := languageIndex(lang, englishOnly)
	for i, item := range t.langItems {
		setChecked(item, i == selected)
	}
}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == nil {
		return
	}

	systray.SetTitle(i18n.T("app_name"))
	t.applyState()

	retitle := func(item *systray.MenuItem, key, hintKey string) {
		item.SetTitle(i18n.T(key))
		if hintKey != "" {
			item.SetTooltip(i18n.T(hintKey))
		}
	}

	retitle(t.recordBtn, "tray_record", "tray_record_hint")
	retitle(t.improveBtn, "tray_improve", "tray_improve_hint")
	retitle(t.quality, "tray_quality", "")
	for tier, item := range t.tierItems {
		retitle(item, tierKeys[tier], "")
	}
	retitle(t.language, "tray_language", "")
	for i, item := range t.langItems {
		retitle(item, Languages[i].Key, "")
	}
	retitle(t.translate, "tray_translate", "tray_translate_hint")
	retitle(t.keys, "tray_keys", "")
	retitle(t.spaceBtn, "tray_space", "")
	retitle(t.returnBtn, "tray_return", "")
	retitle(t.deleteBtn, "tray_delete_word", "")
	retitle(t.llm, "tray_llm", "tray_llm_hint")
	retitle(t.notifyOn, "tray_notifications", "tray_notifications_hint")
	retitle(t.hotkeyBtn, "tray_hotkey", "tray_hotkey_hint")
	retitle(t.uiLang, "tray_ui_language", "")
	for lang, item := range t.uiItems {
		setChecked(item, lang == i18n.GetLanguage())
	}
	retitle(t.quitBtn, "tray_quit", "tray_quit_hint")
}
