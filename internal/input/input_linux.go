//go:build linux

package input

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

type linuxTyper struct {
	useWayland bool
}

func newTyper() (Typer, error) {
	t := &linuxTyper{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
	return t, nil
}

func (t *linuxTyper) Type(text string) error {
	if text == "" {
		return nil
	}
	if t.useWayland {
		return run("wtype", "--", text)
	}
	return run("xdotool", "type", "--clearmodifiers", "--", text)
}

func (t *linuxTyper) Erase(n int) error {
	if n <= 0 {
		return nil
	}
	if t.useWayland {
		args := make([]string, 0, n*2)
		for i := 0; i < n; i++ {
			args = append(args, "-k", "BackSpace")
		}
		return run("wtype", args...)
	}
	return run("xdotool", "key", "--clearmodifiers", "--repeat", strconv.Itoa(n), "BackSpace")
}

func (t *linuxTyper) Press(key Key) error {
	name, err := keysym(key)
	if err != nil {
		return err
	}
	if t.useWayland {
		return run("wtype", "-k", name)
	}
	return run("xdotool", "key", "--clearmodifiers", name)
}

func keysym(key Key) (string, error) {
	switch key {
	case KeySpace:
		return "space", nil
	case KeyReturn:
		return "Return", nil
	default:
		return "", fmt.Errorf("неподдерживаемая клавиша: %v", key)
	}
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}
