package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"whisper-input/internal/models"
)

var listEngine string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Управление моделями распознавания",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать модели и отметить скачанные",
	RunE: func(cmd *cobra.Command, args []string) error {
		var engine models.Engine
		if listEngine != "" {
			e, ok := models.ParseEngine(listEngine)
			if !ok {
				return fmt.Errorf("неизвестный движок: %s", listEngine)
			}
			engine = e
		}

		manager, err := models.NewManager(loadConfig().ModelsDir())
		if err != nil {
			return err
		}
		return printModels(cmd.OutOrStdout(), manager, engine)
	},
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Скачать модель",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, ok := models.GetModel(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrUnknownModel, args[0])
		}

		manager, err := models.NewManager(loadConfig().ModelsDir())
		if err != nil {
			return err
		}
		if manager.IsDownloaded(info) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s уже скачана: %s\n", info.ID, manager.GetModelPath(info))
			return nil
		}

		if !info.Downloadable() {
			return fmt.Errorf("%w: положите граф в %s, словарь %s", models.ErrManualInstall, manager.GetModelPath(info), info.VocabURL)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if err := downloadWithProgress(ctx, cmd.ErrOrStderr(), manager, info); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", info.ID, manager.GetModelPath(info))
		return nil
	},
}

func init() {
	modelsListCmd.Flags().StringVar(&listEngine, "engine", "", "показать только модели движка (whisper, onnx, vosk)")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDownloadCmd)
}

// printModels выводит реестр таблицей. Пустой engine - все движки.
func printModels(w io.Writer, manager *models.Manager, engine models.Engine) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENGINE\tTIER\tLANG\tSIZE\tSTATUS")

	for _, m := range models.Registry {
		if engine != "" && m.Engine != engine {
			continue
		}

		lang := m.Language
		switch {
		case m.EnglishOnly:
			lang = "en"
		case lang == "":
			lang = "multi"
		}

		status := "-"
		switch {
		case manager.IsDownloaded(m):
			status = "downloaded"
		case !m.Downloadable():
			status = "manual"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d MB\t%s\n", m.ID, m.Engine, m.Tier, lang, m.Size>>20, status)
	}
	return tw.Flush()
}

// downloadWithProgress скачивает модель, показывая полосу прогресса в w.
func downloadWithProgress(ctx context.Context, w io.Writer, manager *models.Manager, info models.ModelInfo) error {
	p := mpb.NewWithContext(ctx,
		mpb.WithOutput(w),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	bar := p.AddBar(info.Size,
		mpb.PrependDecorators(
			decor.Name(info.ID+" ", decor.WC{C: decor.DindentRight}),
			decor.Counters(decor.SizeB1024(0), "% .1f / % .1f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WCSyncWidth), " ✓ "),
		),
	)

	progress := make(chan models.Progress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for pr := range progress {
			if pr.Total > 0 {
				bar.SetTotal(pr.Total, false)
			}
			bar.SetCurrent(pr.Downloaded)
			if pr.Done {
				bar.SetTotal(-1, true)
			}
		}
	}()

	err := manager.Download(ctx, info, progress)
	close(progress)
	<-done

	if err != nil {
		bar.Abort(false)
	} else if !bar.Completed() {
		bar.SetTotal(-1, true)
	}
	p.Wait()
	return err
}
