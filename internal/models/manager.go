package models

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Progress информация о прогрессе загрузки.
type Progress struct {
	ModelID    string
	Downloaded int64
	Total      int64
	Done       bool
	Error      error
}

// Manager управляет файлами моделей.
type Manager struct {
	modelsDir string
	client    *http.Client
	mu        sync.RWMutex
}

// NewManager создаёт менеджер моделей.
// Пустой dir означает директорию models/ рядом с бинарником.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("не удалось определить путь к бинарнику: %w", err)
		}

		execPath, err = filepath.EvalSymlinks(execPath)
		if err != nil {
			return nil, fmt.Errorf("не удалось разрешить симлинки: %w", err)
		}
		dir = filepath.Join(filepath.Dir(execPath), "models")
	}

	// По поддиректории на каждый движок
	for _, engine := range AllEngines() {
		engineDir := filepath.Join(dir, string(engine))
		if err := os.MkdirAll(engineDir, 0755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию %s: %w", engine, err)
		}
	}

	return &Manager{modelsDir: dir, client: http.DefaultClient}, nil
}

// ModelsDir возвращает путь к директории моделей.
func (m *Manager) ModelsDir() string {
	return m.modelsDir
}

// GetModelPath возвращает полный путь к модели.
func (m *Manager) GetModelPath(info ModelInfo) string {
	return filepath.Join(m.modelsDir, string(info.Engine), info.Filename)
}

// GetVocabPath возвращает путь к словарю модели или "" если словаря нет.
func (m *Manager) GetVocabPath(info ModelInfo) string {
	if info.VocabFilename == "" {
		return ""
	}
	return filepath.Join(m.modelsDir, string(info.Engine), info.VocabFilename)
}

// IsDownloaded проверяет, что все файлы модели на месте.
func (m *Manager) IsDownloaded(info ModelInfo) bool {
	stat, err := os.Stat(m.GetModelPath(info))
	if err != nil {
		return false
	}

	// Vosk распаковывается в директорию
	if info.IsZip {
		return stat.IsDir()
	}
	if stat.IsDir() || stat.Size() == 0 {
		return false
	}

	if !info.Downloadable() {
		return fmt.Errorf("%w: %s", ErrManualInstall, m.GetModelPath(info))
	}

	if vocab := m.GetVocabPath(info); vocab != "" {
		vstat, err := os.Stat(vocab)
		if err != nil || vstat.Size() == 0 {
			return false
		}
	}

	return true
}

// IsAvailable проверяет наличие модели по ID.
func (m *Manager) IsAvailable(id string) bool {
	info, ok := GetModel(id)
	if !ok {
		return false
	}
	return m.IsDownloaded(info)
}

// ListDownloaded возвращает список скачанных моделей.
func (m *Manager) ListDownloaded() []ModelInfo {
	var downloaded []ModelInfo
	for _, model := range Registry {
		if m.IsDownloaded(model) {
			downloaded = append(downloaded, model)
		}
	}
	return downloaded
}

// Download скачивает модель (и словарь, если он нужен).
// progress канал получает обновления о прогрессе (можно nil).
func (m *Manager) Download(ctx context.Context, info ModelInfo, progress chan<- Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsDownloaded(info) {
		if progress != nil {
			progress <- Progress{ModelID: info.ID, Downloaded: info.Size, Total: info.Size, Done: true}
		}
		return nil
	}

	if vocab := m.GetVocabPath(info); vocab != "" {
		if err := m.fetch(ctx, info.VocabURL, vocab, info.ID, 0, nil); err != nil {
			return fmt.Errorf("ошибка скачивания словаря: %w", err)
		}
	}

	if info.IsZip {
		return m.downloadAndUnzip(ctx, info, progress)
	}

	total, err := m.fetchModel(ctx, info, m.GetModelPath(info), progress)
	if err != nil {
		return err
	}

	if progress != nil {
		progress <- Progress{ModelID: info.ID, Downloaded: total, Total: total, Done: true}
	}
	return nil
}

func (m *Manager) fetchModel(ctx context.Context, info ModelInfo, destPath string, progress chan<- Progress) (int64, error) {
	var total int64
	err := m.fetch(ctx, info.URL, destPath, info.ID, info.Size, func(p Progress) {
		total = p.Total
		if progress != nil {
			select {
			case progress <- p:
			default:
			}
		}
	})
	return total, err
}

// fetch скачивает url во временный файл рядом с destPath и переименовывает его.
func (m *Manager) fetch(ctx context.Context, url, destPath, id string, sizeHint int64, report func(Progress)) error {
	tmpPath := destPath + ".tmp"
	defer os.Remove(tmpPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка скачивания: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP ошибка: %s", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = sizeHint
	}

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var downloaded int64
	buf := make([]byte, 32*1024)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return werr
			}
			downloaded += int64(n)
			if report != nil {
				report(Progress{ModelID: id, Downloaded: downloaded, Total: total})
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, destPath)
}

func (m *Manager) downloadAndUnzip(ctx context.Context, info ModelInfo, progress chan<- Progress) error {
	destDir := m.GetModelPath(info)
	tmpZip := destDir + ".zip"
	defer os.Remove(tmpZip)

	total, err := m.fetchModel(ctx, info, tmpZip, progress)
	if err != nil {
		return err
	}

	// Архив содержит директорию модели верхнего уровня
	if err := unzip(tmpZip, filepath.Dir(destDir)); err != nil {
		return fmt.Errorf("ошибка распаковки: %w", err)
	}

	if progress != nil {
		progress <- Progress{ModelID: info.ID, Downloaded: total, Total: total, Done: true}
	}
	return nil
}

func unzip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for _, f := range r.File {
		fpath := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("недопустимый путь в архиве: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}

		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, fpath string) error {
	outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(outFile, rc)
	return err
}

// Delete удаляет файлы модели.
func (m *Manager) Delete(info ModelInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vocab := m.GetVocabPath(info); vocab != "" {
		if err := os.RemoveAll(vocab); err != nil {
			return err
		}
	}
	return os.RemoveAll(m.GetModelPath(info))
}
