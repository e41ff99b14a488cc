// Package notify предоставляет системные уведомления.
package notify

import (
	"log"
	"sync"

	"github.com/gen2brain/beeep"

	"whisper-input/internal/i18n"
)

const maxMessageLen = 100

// Notifier отправляет системные уведомления.
type Notifier struct {
	mu      sync.RWMutex
	enabled bool
	send    func(title, message string) error
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Recording показывает уведомление о начале записи.
func (n *Notifier) Recording() {
	n.notify(i18n.T("notify_recording"), i18n.T("notify_recording_hint"))
}

// Processing показывает уведомление об обработке.
func (n *Notifier) Processing() {
	n.notify(i18n.T("notify_processing"), i18n.T("notify_processing_hint"))
}

// Success показывает распознанный текст.
func (n *Notifier) Success(text string) {
	n.notify(i18n.T("notify_done"), truncate(text))
}

// Empty показывает уведомление о пустом результате.
func (n *Notifier) Empty() {
	n.notify(i18n.T("notify_empty"), i18n.T("notify_empty_hint"))
}

// Error показывает уведомление об ошибке. Ошибки показываются
// даже при выключенных уведомлениях.
func (n *Notifier) Error(msg string) {
	n.deliver(i18n.T("notify_error"), msg)
}

// Info показывает информационное уведомление.
func (n *Notifier) Info(msg string) {
	n.notify("", truncate(msg))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxMessageLen {
		return string(r[:maxMessageLen]) + "..."
	}
	return s
}

func (n *Notifier) notify(title, message string) {
	n.mu.RLock()
	enabled := n.enabled
	n.mu.RUnlock()

	if enabled {
		n.deliver(title, message)
	}
}

func (n *Notifier) deliver(title, message string) {
	appName := i18n.T("app_name")
	if title != "" {
		title = appName + ": " + title
	} else {
		title = appName
	}
	if err := n.send(title, message); err != nil {
		log.Printf("Уведомление не показано: %v", err)
	}
}
