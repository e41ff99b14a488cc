package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"whisper-input/internal/app"
	"whisper-input/internal/models"
)

var (
	transcribeModel     string
	transcribeBackend   string
	transcribeLanguage  string
	transcribeTranslate bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Распознать WAV файл (16 кГц) и вывести текст",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		backend := cfg.Backend()
		if cmd.Flags().Changed("backend") {
			backend = transcribeBackend
		}
		engine, ok := models.ParseEngine(backend)
		if !ok {
			return fmt.Errorf("неизвестный движок: %s", backend)
		}

		modelID := transcribeModel
		if modelID == "" {
			if info, ok := models.GetModel(cfg.ModelID()); ok && info.Engine == engine {
				modelID = info.ID
			}
		}
		if modelID != "" {
			info, ok := models.GetModel(modelID)
			if !ok {
				return fmt.Errorf("%w: %s", models.ErrUnknownModel, modelID)
			}
			// Модель определяет движок, если он не задан явно
			if !cmd.Flags().Changed("backend") {
				engine = info.Engine
			}
		}

		lang := cfg.Language()
		if cmd.Flags().Changed("language") {
			lang = transcribeLanguage
		}
		translate := cfg.Translate()
		if cmd.Flags().Changed("translate") {
			translate = transcribeTranslate
		}

		manager, err := models.NewManager(cfg.ModelsDir())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		start := time.Now()
		text, err := app.Transcribe(ctx, manager, engine, modelID, args[0], lang, translate)
		if err != nil {
			return err
		}
		log.Printf("Распознано за %v", time.Since(start).Round(time.Millisecond))

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringVar(&transcribeModel, "model", "", "ID модели (по умолчанию из конфигурации)")
	transcribeCmd.Flags().StringVar(&transcribeBackend, "backend", "", "движок: whisper, onnx, vosk")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "язык речи (auto, en, de, ru)")
	transcribeCmd.Flags().BoolVar(&transcribeTranslate, "translate", false, "перевести на английский")
}
