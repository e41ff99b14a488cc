//go:build linux

package indicator

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// positionWindow переносит окно в правый нижний угол экрана и держит его
// поверх остальных, чтобы фокус ввода оставался в целевом поле.
// Нужны xdotool и wmctrl (или xprop), без них окно остаётся на месте.
func positionWindow(title string, width, height int) {
	// Окно появляется не сразу
	time.Sleep(100 * time.Millisecond)

	screenWidth, screenHeight := screenSize()
	if screenWidth == 0 || screenHeight == 0 {
		return
	}

	out, err := exec.Command("xdotool", "search", "--name", title).Output()
	if err != nil {
		return
	}
	ids := strings.Fields(string(out))
	if len(ids) == 0 {
		return
	}
	id := ids[len(ids)-1]

	x, y := cornerPosition(screenWidth, screenHeight, width, height)
	_ = exec.Command("xdotool", "windowmove", id, strconv.Itoa(x), strconv.Itoa(y)).Run()

	if err := exec.Command("wmctrl", "-i", "-r", id, "-b", "add,above").Run(); err != nil {
		_ = exec.Command("xprop", "-id", id, "-f", "_NET_WM_STATE", "32a",
			"-set", "_NET_WM_STATE", "_NET_WM_STATE_ABOVE").Run()
	}
}

func screenSize() (width, height int) {
	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0
	}
	return parseGeometry(string(out))
}
