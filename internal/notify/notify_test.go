package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"whisper-input/internal/i18n"
)

type sent struct{ title, message string }

func newTestNotifier(enabled bool) (*Notifier, *[]sent) {
	var log []sent
	n := New(enabled)
	n.send = func(title, message string) error {
		log = append(log, sent{title, message})
		return nil
	}
	return n, &log
}

func TestDisabledNotifierStillShowsErrors(t *testing.T) {
	n, log := newTestNotifier(false)

	n.Recording()
	n.Success("text")
	n.Info("info")
	assert.Empty(t, *log)

	n.Error("boom")
	assert.Equal(t, []sent{{i18n.T("app_name") + ": " + i18n.T("notify_error"), "boom"}}, *log)
}

func TestSuccessTruncatesByRunes(t *testing.T) {
	n, log := newTestNotifier(true)

	n.Success(strings.Repeat("я", 150))

	msg := (*log)[0].message
	assert.Equal(t, maxMessageLen+3, len([]rune(msg)))
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestInfoUsesAppNameAsTitle(t *testing.T) {
	n, log := newTestNotifier(true)

	n.Info("ready")
	n.SetEnabled(false)
	n.Info("hidden")

	assert.Equal(t, []sent{{i18n.T("app_name"), "ready"}}, *log)
}
