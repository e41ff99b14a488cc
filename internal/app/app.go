// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"whisper-input/internal/audio"
	"whisper-input/internal/config"
	"whisper-input/internal/dialog"
	"whisper-input/internal/hotkey"
	"whisper-input/internal/i18n"
	"whisper-input/internal/indicator"
	"whisper-input/internal/input"
	"whisper-input/internal/llm"
	"whisper-input/internal/models"
	"whisper-input/internal/notify"
	"whisper-input/internal/speech"
	"whisper-input/internal/tray"
)

// App связывает контроллер с треем, горячей клавишей и окном занятости.
type App struct {
	config    *config.Config
	recorder  *audio.Recorder
	accessor  *speech.Accessor
	notifier  *notify.Notifier
	corrector *llm.Corrector
	ctrl      *Controller
	tray      *tray.Tray
	hotkey    *hotkey.Handler
	busy      *indicator.Window

	// Обновления UI выполняются по очереди в отдельной горутине,
	// хуки контроллера вызываются под его мьютексом.
	ui        chan func()
	done      chan struct{}
	model     models.ModelInfo
	closeOnce sync.Once
}

// New создаёт приложение из конфигурации.
func New(cfg *config.Config) (*App, error) {
	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Language(uiLang))
	}

	engine, ok := models.ParseEngine(cfg.Backend())
	if !ok {
		log.Printf("Неизвестный движок %q, используем %s", cfg.Backend(), models.EngineWhisper)
		engine = models.EngineWhisper
	}

	manager, err := models.NewManager(cfg.ModelsDir())
	if err != nil {
		return nil, err
	}

	typer, err := input.New()
	if err != nil {
		return nil, err
	}

	recorder, err := audio.New()
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		recorder: recorder,
		accessor: speech.NewAccessor(engine, speech.NewFactory(manager), recorder, os.TempDir()),
		notifier: notify.New(cfg.NotificationsEnabled()),
		busy:     indicator.New(),
		ui:       make(chan func(), 64),
		done:     make(chan struct{}),
	}

	llmCfg := cfg.LLM()
	a.corrector = llm.New(llm.Config{URL: llmCfg.URL, Model: llmCfg.Model})

	a.ctrl = NewController(cfg, a.accessor, typer, a.notifier, a.corrector, manager, Hooks{
		OnState:     func(s State) { a.post(func() { a.showState(s) }) },
		OnModel:     func(info models.ModelInfo) { a.post(func() { a.showModel(info) }) },
		OnProgress:  func(p models.Progress) { a.post(func() { a.busy.SetProgress(p) }) },
		AskDownload: dialog.AskDownload,
		Copy:        clipboard.WriteAll,
	})

	a.hotkey = hotkey.New(a.ctrl.ToggleRecording)
	cfg.OnHotkeyChange(func(hk config.HotkeyConfig) {
		if err := a.hotkey.Register(hk); err != nil {
			log.Printf("Ошибка регистрации горячей клавиши: %v", err)
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}
	})

	a.tray = tray.New(a.trayCallbacks(), a.trayOptions())

	go a.runUI()

	return a, nil
}

func (a *App) trayCallbacks() tray.Callbacks {
	return tray.Callbacks{
		OnRecord:     a.ctrl.ToggleRecording,
		OnImprove:    a.ctrl.Improve,
		OnTier:       a.ctrl.SelectTier,
		OnLanguage: func(lang string, englishOnly bool) {
			a.ctrl.SetLanguage(lang, englishOnly)
			// Пункт меню отмечается по сохранённому выбору
			a.tray.SetLanguage(a.config.Language(), a.config.EnglishOnly())
		},
		OnTranslate:  a.ctrl.SetTranslate,
		OnSpace:      a.ctrl.Space,
		OnReturn:     a.ctrl.Return,
		OnDeleteWord: a.ctrl.DeleteWord,
		OnLLMToggle:  a.toggleLLM,
		OnNotificationsToggle: func() bool {
			enabled := a.config.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnHotkeyClick: a.selectHotkey,
		OnUILanguage: func(lang i18n.Language) {
			a.config.SetUILanguage(string(lang))
		},
		OnQuit: a.Close,
	}
}

func (a *App) trayOptions() tray.Options {
	tier := models.TierBalanced
	if info, ok := models.GetModel(a.config.ModelID()); ok {
		tier = info.Tier
	}
	return tray.Options{
		Tier:          tier,
		Language:      a.config.Language(),
		EnglishOnly:   a.config.EnglishOnly(),
		Translate:     a.config.Translate(),
		LLM:           a.config.LLMEnabled(),
		Notifications: a.config.NotificationsEnabled(),
	}
}

// Run запускает трей. Блокирует до выхода из приложения.
func (a *App) Run() {
	a.tray.Run(func() {
		if err := a.hotkey.Register(a.config.Hotkey()); err != nil {
			log.Printf("Ошибка регистрации горячей клавиши: %v", err)
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}
		log.Printf("Горячая клавиша: %s", a.config.Hotkey())

		go a.ctrl.LoadInitial()
	}, a.Close)
}

// post ставит обновление UI в очередь.
func (a *App) post(fn func()) {
	select {
	case a.ui <- fn:
	case <-a.done:
	}
}

func (a *App) runUI() {
	for {
		select {
		case fn := <-a.ui:
			fn()
		case <-a.done:
			return
		}
	}
}

func (a *App) showState(s State) {
	switch s {
	case StateRecording:
		a.tray.SetState(tray.StateRecording)
		a.busy.ShowRecording(time.Now(), func() float32 {
			return audio.Level(a.recorder.GetSamples())
		})
	case StateProcessing:
		a.tray.SetState(tray.StateProcessing)
		a.busy.Show(i18n.T("indicator_processing"), a.model.Name)
	case StateLoading:
		a.tray.SetState(tray.StateLoading)
		a.busy.Show(i18n.T("indicator_loading"), a.model.Name)
	default:
		a.tray.SetState(tray.StateIdle)
		a.busy.Hide()
	}
}

func (a *App) showModel(info models.ModelInfo) {
	a.model = info
	a.tray.SetTier(info.Tier)
	a.tray.SetLanguage(a.config.Language(), a.config.EnglishOnly())
	if a.busy.Visible() {
		a.busy.SetStatus(i18n.T("indicator_loading"), info.Name)
	}
}

func (a *App) toggleLLM() bool {
	enabled := !a.config.LLMEnabled()
	a.config.SetLLMEnabled(enabled)
	if !enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !a.corrector.IsAvailable(ctx) {
		log.Printf("Ollama недоступна, модель %s", a.corrector.Model())
		a.notifier.Info(i18n.T("error_llm_unavailable"))
	}
	return true
}

func (a *App) selectHotkey() {
	hk, err := dialog.SelectHotkey(a.config.Hotkey())
	if errors.Is(err, dialog.ErrNoModifier) {
		dialog.ShowError(i18n.T("app_name"), i18n.T("dialog_hotkey_need_mod"))
		return
	}
	if err != nil {
		// Отмена диалога
		return
	}
	a.config.SetHotkey(hk)
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.ctrl.Close()

		if err := a.hotkey.Unregister(); err != nil {
			log.Printf("Ошибка снятия горячей клавиши: %v", err)
		}

		a.accessor.Close()
		a.recorder.Close()

		close(a.done)
		a.busy.Hide()
		log.Println("Приложение остановлено")
	})
}

// Transcribe распознаёт WAV файл без микрофона и UI.
// Пустой modelID означает модель по умолчанию для движка.
func Transcribe(ctx context.Context, manager *models.Manager, engine models.Engine, modelID, path, lang string, translate bool) (string, error) {
	if modelID == "" {
		modelID = models.DefaultModelID(engine)
	}

	acc := speech.NewAccessor(engine, speech.NewFactory(manager), nil, os.TempDir())
	defer acc.Close()

	if err := acc.LoadModel(ctx, modelID); err != nil {
		return "", fmt.Errorf("загрузка модели %s: %w", modelID, err)
	}

	acc.UseRecording(path)
	return acc.Transcribe(ctx, lang, translate)
}
