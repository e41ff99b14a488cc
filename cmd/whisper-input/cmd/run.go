package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"whisper-input/internal/app"
	"whisper-input/internal/hotkey"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Запустить приложение в системном трее",
	RunE:  runTray,
}

func runTray(cmd *cobra.Command, args []string) error {
	log.Printf("Whisper Input %s запускается...", Version)
	cfg := loadConfig()

	var runErr error
	// Трей и горячие клавиши требуют главного потока (macOS)
	hotkey.RunOnMainThread(func() {
		application, err := app.New(cfg)
		if err != nil {
			log.Printf("Ошибка инициализации: %v", err)
			runErr = err
			return
		}

		log.Printf("Приложение запущено. Нажмите %s для записи.", cfg.Hotkey())
		application.Run()
	})
	return runErr
}
