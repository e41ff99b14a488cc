// Package input предоставляет ввод текста в активное поле.
package input

import (
	"fmt"
	"unicode"
)

// Key специальная клавиша.
type Key int

const (
	KeySpace Key = iota
	KeyReturn
)

func (k Key) String() string {
	switch k {
	case KeySpace:
		return "space"
	case KeyReturn:
		return "return"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// Typer вводит текст в активное поле ввода.
type Typer interface {
	// Type вводит текст в текущее активное поле.
	Type(text string) error
	// Erase удаляет n символов перед курсором.
	Erase(n int) error
	// Press нажимает специальную клавишу.
	Press(key Key) error
}

// New создаёт платформо-специфичный Typer.
func New() (Typer, error) {
	return newTyper()
}

// DeleteWordWindow сколько символов перед курсором смотрит "удалить слово".
const DeleteWordWindow = 20

// DeleteWordLength считает, сколько символов удалить кнопкой "удалить слово":
// последний символ и все непробельные символы перед ним.
func DeleteWordLength(textBeforeCursor string) int {
	runes := []rune(textBeforeCursor)
	if len(runes) > DeleteWordWindow {
		runes = runes[len(runes)-DeleteWordWindow:]
	}

	n := 1
	for i := len(runes) - 2; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			break
		}
		n++
	}
	return n
}
