// Package cmd содержит команды CLI whisper-input.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"whisper-input/internal/config"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "whisper-input",
	Short: "Голосовой ввод текста через Whisper, ONNX Runtime или Vosk",
	Long: `Whisper Input работает в системном трее и вводит распознанную речь
в активное поле. Без подкоманды запускает приложение в трее.`,
	SilenceUsage: true,
	RunE:         runTray,
}

// Execute запускает корневую команду.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "путь к config.json (по умолчанию рядом с бинарником)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig подгружает .env и конфигурацию.
func loadConfig() *config.Config {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Предупреждение: %v", err)
	}
	if configPath != "" {
		return config.NewWithPath(configPath)
	}
	return config.New()
}
