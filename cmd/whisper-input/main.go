// Whisper Input - кроссплатформенное приложение для голосового ввода текста.
//
// Работает в системном трее, слушает горячую клавишу (по умолчанию
// Ctrl+Shift+Space): первое нажатие начинает запись, второе распознаёт
// её и вводит текст в активное поле.
package main

import (
	"log"

	"whisper-input/cmd/whisper-input/cmd"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)
	cmd.Execute()
}
