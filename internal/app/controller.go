package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"whisper-input/internal/config"
	"whisper-input/internal/i18n"
	"whisper-input/internal/input"
	"whisper-input/internal/models"
	"whisper-input/internal/speech"
)

const (
	// MinRecordingDuration - минимальная длительность записи для распознавания
	MinRecordingDuration = 500 * time.Millisecond

	// LLMTimeout - сколько ждать коррекцию текста
	LLMTimeout = 30 * time.Second

	historySize = 256
)

// State состояние контроллера.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateLoading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateLoading:
		return "loading"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Accessor - то, что контроллеру нужно от speech.Accessor.
type Accessor interface {
	Engine() models.Engine
	StartRecording() error
	StopRecording() error
	LastRecording() string
	TranscribeAsync(ctx context.Context, lang string, translate bool) <-chan speech.Result
	LoadModelAsync(ctx context.Context, modelID string) <-chan error
	IsModelAvailable(modelID string) bool
	IsLoaded() bool
	CurrentModelID() string
}

// Notifier показывает пользователю события.
type Notifier interface {
	Recording()
	Processing()
	Success(text string)
	Empty()
	Error(msg string)
	Info(msg string)
}

// Corrector исправляет распознанный текст.
type Corrector interface {
	Correct(ctx context.Context, text, lang string) (string, error)
}

// Downloader скачивает модели.
type Downloader interface {
	Download(ctx context.Context, info models.ModelInfo, progress chan<- models.Progress) error
}

// Hooks связывают контроллер с UI. Все поля необязательны.
type Hooks struct {
	// OnState вызывается при каждой смене состояния.
	OnState func(State)
	// OnModel вызывается, когда выбрана новая модель.
	OnModel func(models.ModelInfo)
	// OnProgress получает прогресс скачивания модели.
	OnProgress func(models.Progress)
	// AskDownload спрашивает, скачать ли отсутствующую модель.
	AskDownload func(models.ModelInfo) bool
	// Copy кладёт текст в буфер обмена, если ввести его не удалось.
	Copy func(text string) error
}

// Controller реализует логику голосовой клавиатуры:
// запись по кнопке, распознавание, ввод текста, "улучшить" и выбор модели.
// Методы могут блокироваться на время скачивания модели.
type Controller struct {
	cfg        *config.Config
	acc        Accessor
	typer      input.Typer
	notifier   Notifier
	corrector  Corrector
	downloader Downloader
	hooks      Hooks
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	recordingStart time.Time
	lastInsert     string
	history        []rune // текст, введённый нами, для "удалить слово"
	improvePending bool
	work           sync.WaitGroup
}

// NewController создаёт контроллер. corrector и downloader могут быть nil.
func NewController(cfg *config.Config, acc Accessor, typer input.Typer, notifier Notifier,
	corrector Corrector, downloader Downloader, hooks Hooks) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:        cfg,
		acc:        acc,
		typer:      typer,
		notifier:   notifier,
		corrector:  corrector,
		downloader: downloader,
		hooks:      hooks,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// State возвращает текущее состояние.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastInsert возвращает последний вставленный текст.
func (c *Controller) LastInsert() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastInsert
}

// setState вызывается под c.mu.
func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	log.Printf("Состояние: %s -> %s", c.state, s)
	c.state = s
	if c.hooks.OnState != nil {
		c.hooks.OnState(s)
	}
}

// ToggleRecording начинает запись или останавливает её и запускает распознавание.
// Во время распознавания и загрузки модели нажатия игнорируются.
func (c *Controller) ToggleRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRecording:
		c.stopRecording()
	case StateIdle:
		c.startRecording()
	default:
		log.Printf("Нажатие проигнорировано: %s", c.state)
	}
}

func (c *Controller) startRecording() {
	if !c.acc.IsLoaded() {
		c.notifier.Error(i18n.T("error_model_not_loaded"))
		return
	}

	if err := c.acc.StartRecording(); err != nil {
		log.Printf("Ошибка начала записи: %v", err)
		c.notifier.Error(i18n.T("error_recording") + ": " + err.Error())
		return
	}

	c.recordingStart = c.now()
	c.setState(StateRecording)
	c.notifier.Recording()
}

func (c *Controller) stopRecording() {
	err := c.acc.StopRecording()
	elapsed := c.now().Sub(c.recordingStart)

	if err != nil {
		log.Printf("Ошибка остановки записи: %v", err)
		c.notifier.Error(i18n.T("error_recording") + ": " + err.Error())
		c.setState(StateIdle)
		return
	}

	if elapsed < MinRecordingDuration {
		log.Printf("Запись слишком короткая (%v), пропускаем", elapsed.Round(time.Millisecond))
		c.setState(StateIdle)
		return
	}

	c.startTranscription()
}

// startTranscription вызывается под c.mu.
func (c *Controller) startTranscription() {
	c.setState(StateProcessing)
	c.notifier.Processing()

	c.work.Add(1)
	go func() {
		defer c.work.Done()
		c.transcribe()
	}()
}

func (c *Controller) transcribe() {
	lang := c.cfg.Language()
	res := <-c.acc.TranscribeAsync(c.ctx, lang, c.cfg.Translate())

	text := strings.TrimSpace(res.Text)
	if res.Err == nil && text != "" && c.corrector != nil && c.cfg.LLMEnabled() {
		ctx, cancel := context.WithTimeout(c.ctx, LLMTimeout)
		corrected, err := c.corrector.Correct(ctx, text, lang)
		cancel()
		if err != nil {
			log.Printf("LLM коррекция не удалась: %v", err)
		} else if corrected = strings.TrimSpace(corrected); corrected != "" {
			text = corrected
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.setState(StateIdle)

	switch {
	case res.Err != nil:
		log.Printf("Ошибка распознавания: %v", res.Err)
		c.lastInsert = ""
		c.notifier.Error(errorMessage(res.Err))
	case text == "":
		c.lastInsert = ""
		c.notifier.Empty()
	default:
		c.insert(text)
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, speech.ErrModelNotLoaded):
		return i18n.T("error_model_not_loaded")
	case errors.Is(err, speech.ErrNoRecording):
		return i18n.T("error_no_recording")
	default:
		return i18n.T("error_recognition") + ": " + err.Error()
	}
}

// insert вводит текст в активное поле, при ошибке кладёт в буфер обмена.
func (c *Controller) insert(text string) {
	c.lastInsert = ""

	if err := c.typer.Type(text); err != nil {
		log.Printf("Ошибка ввода текста: %v", err)
		if c.hooks.Copy != nil {
			cerr := c.hooks.Copy(text)
			if cerr == nil {
				c.notifier.Error(i18n.T("error_input") + ". " + i18n.T("notify_copied"))
				return
			}
			log.Printf("Ошибка копирования в буфер: %v", cerr)
		}
		c.notifier.Error(i18n.T("error_input") + ": " + err.Error())
		return
	}

	c.lastInsert = text
	c.appendHistory(text)
	c.notifier.Success(text)
}

// appendHistory не обрезает историю короче последней вставки,
// иначе "улучшить" не сможет её стереть.
func (c *Controller) appendHistory(text string) {
	c.history = append(c.history, []rune(text)...)
	limit := max(historySize, utf8.RuneCountInString(c.lastInsert))
	if len(c.history) > limit {
		c.history = append([]rune(nil), c.history[len(c.history)-limit:]...)
	}
}

func (c *Controller) trimHistory(n int) {
	if n > len(c.history) {
		n = len(c.history)
	}
	c.history = c.history[:len(c.history)-n]
}

// eraseLastInsert стирает последнюю вставку, если она всё ещё перед курсором.
// false означает, что стереть не удалось и текст остался в поле.
func (c *Controller) eraseLastInsert() bool {
	if c.lastInsert == "" {
		return true
	}

	if !strings.HasSuffix(string(c.history), c.lastInsert) {
		log.Printf("Последняя вставка уже изменена, не стираем")
		c.lastInsert = ""
		return true
	}

	n := utf8.RuneCountInString(c.lastInsert)
	if err := c.typer.Erase(n); err != nil {
		log.Printf("Ошибка удаления текста: %v", err)
		c.notifier.Error(i18n.T("error_input") + ": " + err.Error())
		return false
	}
	c.trimHistory(n)
	c.lastInsert = ""
	return true
}

// Improve стирает последнюю вставку и распознаёт ту же запись
// моделью следующего уровня (не выше Accurate).
func (c *Controller) Improve() {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		log.Printf("Улучшение проигнорировано: %s", c.state)
		return
	}
	if c.acc.LastRecording() == "" {
		c.mu.Unlock()
		c.notifier.Error(i18n.T("error_no_recording"))
		return
	}

	current := c.acc.CurrentModelID()
	next := models.Improve(current)
	c.mu.Unlock()

	if next != current {
		info, ok := models.GetModel(next)
		if !ok || !c.ensureAvailable(info) {
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return
	}

	if !c.eraseLastInsert() {
		return
	}

	if next == current {
		log.Printf("Модель %s уже самая точная, распознаём заново", current)
		c.startTranscription()
		return
	}

	log.Printf("Улучшение: %s -> %s", current, next)
	c.improvePending = true
	c.loadModel(next)
}

// SelectModel выбирает модель, при необходимости предлагая её скачать.
func (c *Controller) SelectModel(modelID string) {
	info, ok := models.GetModel(modelID)
	if !ok {
		c.notifier.Error(fmt.Sprintf("%s: %s", i18n.T("error_model_load"), modelID))
		return
	}
	if info.Engine != c.acc.Engine() {
		c.notifier.Error(fmt.Sprintf("%s: %s (%s)", i18n.T("error_model_load"), modelID, models.EngineName(c.acc.Engine())))
		return
	}

	if c.State() != StateIdle {
		log.Printf("Выбор модели проигнорирован: %s", c.State())
		return
	}

	if !c.ensureAvailable(info) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return
	}
	c.loadModel(modelID)
}

// SelectTier выбирает модель уровня tier в текущем семействе.
func (c *Controller) SelectTier(tier models.Tier) {
	info, ok := models.ModelFor(c.query(tier))
	if !ok {
		c.notifier.Error(i18n.T("error_model_load"))
		return
	}
	c.SelectModel(info.ID)
}

// SetLanguage меняет язык распознавания. englishOnly выбирает .en модели;
// если семейство моделей изменилось, загружается модель того же уровня.
// Во время записи, распознавания или загрузки вызов игнорируется.
func (c *Controller) SetLanguage(lang string, englishOnly bool) {
	if state := c.State(); state != StateIdle {
		log.Printf("Смена языка проигнорирована: %s", state)
		return
	}

	c.cfg.SetLanguage(lang)
	c.cfg.SetEnglishOnly(englishOnly)

	tier := models.TierBalanced
	if current, ok := models.GetModel(c.acc.CurrentModelID()); ok {
		tier = current.Tier
	} else if saved, ok := models.GetModel(c.cfg.ModelID()); ok {
		tier = saved.Tier
	}

	info, ok := models.ModelFor(c.query(tier))
	if !ok || info.ID == c.acc.CurrentModelID() {
		return
	}
	c.SelectModel(info.ID)
}

// SetTranslate включает перевод на английский.
func (c *Controller) SetTranslate(enabled bool) {
	c.cfg.SetTranslate(enabled)
}

func (c *Controller) query(tier models.Tier) models.Query {
	return models.Query{
		Engine:      c.acc.Engine(),
		Tier:        tier,
		Language:    c.cfg.Language(),
		EnglishOnly: c.cfg.EnglishOnly(),
	}
}

// ensureAvailable проверяет, что модель скачана, иначе предлагает скачать.
// Модели без URL скачивания не предлагаются.
func (c *Controller) ensureAvailable(info models.ModelInfo) bool {
	if c.acc.IsModelAvailable(info.ID) {
		return true
	}

	if !info.Downloadable() {
		log.Printf("Модель %s нужно установить вручную", info.ID)
		c.notifier.Info(i18n.T("error_model_manual") + ": " + info.Name)
		return false
	}

	if c.downloader == nil || c.hooks.AskDownload == nil || !c.hooks.AskDownload(info) {
		c.notifier.Info(i18n.T("error_model_not_downloaded") + ": " + info.Name)
		return false
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return false
	}
	c.setState(StateLoading)
	c.mu.Unlock()

	err := c.download(info)

	c.mu.Lock()
	c.setState(StateIdle)
	c.mu.Unlock()

	if err != nil {
		log.Printf("Ошибка скачивания %s: %v", info.ID, err)
		c.notifier.Error(i18n.T("error_download") + ": " + err.Error())
		return false
	}
	return true
}

func (c *Controller) download(info models.ModelInfo) error {
	progress := make(chan models.Progress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if c.hooks.OnProgress != nil {
				c.hooks.OnProgress(p)
			}
		}
	}()

	log.Printf("Скачивание модели %s", info.ID)
	err := c.downloader.Download(c.ctx, info, progress)
	close(progress)
	<-done
	return err
}

// loadModel вызывается под c.mu в состоянии Idle.
func (c *Controller) loadModel(modelID string) {
	info, _ := models.GetModel(modelID)
	c.cfg.SetModelID(modelID)
	c.setState(StateLoading)
	if c.hooks.OnModel != nil {
		c.hooks.OnModel(info)
	}

	ch := c.acc.LoadModelAsync(c.ctx, modelID)
	c.work.Add(1)
	go func() {
		defer c.work.Done()
		err := <-ch

		c.mu.Lock()
		defer c.mu.Unlock()

		pending := c.improvePending
		c.improvePending = false

		if err != nil {
			log.Printf("Ошибка загрузки модели %s: %v", modelID, err)
			c.notifier.Error(i18n.T("error_model_load") + ": " + info.Name)
			c.setState(StateIdle)
			return
		}

		if pending {
			c.startTranscription()
			return
		}
		c.setState(StateIdle)
		c.notifier.Info(i18n.T("success_model_loaded") + ": " + info.Name)
	}()
}

// LoadInitial загружает модель из конфигурации или модель по умолчанию.
func (c *Controller) LoadInitial() {
	modelID := c.cfg.ModelID()
	info, ok := models.GetModel(modelID)
	if !ok || info.Engine != c.acc.Engine() {
		info, _ = models.ModelFor(c.query(models.TierBalanced))
		modelID = info.ID
	}
	c.SelectModel(modelID)
}

// Space вводит пробел.
func (c *Controller) Space() {
	c.pressKey(input.KeySpace, ' ')
}

// Return вводит перевод строки.
func (c *Controller) Return() {
	c.pressKey(input.KeyReturn, '\n')
}

func (c *Controller) pressKey(key input.Key, r rune) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.typer.Press(key); err != nil {
		log.Printf("Ошибка нажатия %s: %v", key, err)
		c.notifier.Error(i18n.T("error_input") + ": " + err.Error())
		return
	}
	c.appendHistory(string(r))
}

// DeleteWord удаляет последнее слово перед курсором.
func (c *Controller) DeleteWord() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := input.DeleteWordLength(string(c.history))
	if err := c.typer.Erase(n); err != nil {
		log.Printf("Ошибка удаления текста: %v", err)
		c.notifier.Error(i18n.T("error_input") + ": " + err.Error())
		return
	}
	c.trimHistory(n)
}

// Wait ждёт завершения фоновых распознаваний и загрузок.
func (c *Controller) Wait() {
	c.work.Wait()
}

// Close отменяет фоновые операции.
func (c *Controller) Close() {
	c.cancel()
	c.Wait()
}
