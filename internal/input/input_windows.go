//go:build windows

package input

import (
	"fmt"
	"syscall"
	"unicode/utf16"
	"unsafe"
)

var (
	user32        = syscall.NewLazyDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard    = 1
	keyEventFKeyUp   = 0x0002
	keyEventFUnicode = 0x0004

	vkBack   = 0x08
	vkReturn = 0x0D
	vkSpace  = 0x20
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

type windowsTyper struct{}

func newTyper() (Typer, error) {
	return &windowsTyper{}, nil
}

func (t *windowsTyper) Type(text string) error {
	runes := utf16.Encode([]rune(text))
	inputs := make([]input, 0, len(runes)*2)

	for _, r := range runes {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: r, dwFlags: keyEventFUnicode}},
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: r, dwFlags: keyEventFUnicode | keyEventFKeyUp}},
		)
	}

	return sendInput(inputs)
}

func (t *windowsTyper) Erase(n int) error {
	if n <= 0 {
		return nil
	}
	inputs := make([]input, 0, n*2)
	for i := 0; i < n; i++ {
		inputs = append(inputs, virtualKey(vkBack)...)
	}
	return sendInput(inputs)
}

func (t *windowsTyper) Press(key Key) error {
	switch key {
	case KeySpace:
		return sendInput(virtualKey(vkSpace))
	case KeyReturn:
		return sendInput(virtualKey(vkReturn))
	default:
		return fmt.Errorf("неподдерживаемая клавиша: %v", key)
	}
}

// virtualKey нажатие и отпускание виртуальной клавиши.
func virtualKey(vk uint16) []input {
	return []input{
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vk}},
		{inputType: inputKeyboard, ki: keyboardInput{wVk: vk, dwFlags: keyEventFKeyUp}},
	}
}

func sendInput(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}

	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(inputs[0])),
	)
	if int(sent) != len(inputs) {
		return fmt.Errorf("SendInput: отправлено %d из %d событий: %v", sent, len(inputs), err)
	}
	return nil
}
