package models

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestNewManagerCreatesEngineDirs(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, m.ModelsDir())

	for _, e := range AllEngines() {
		stat, err := os.Stat(filepath.Join(dir, string(e)))
		require.NoError(t, err)
		assert.True(t, stat.IsDir())
	}
}

func TestIsDownloaded(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	whisper, _ := GetModel("whisper-base")
	assert.False(t, m.IsDownloaded(whisper))

	writeFile(t, m.GetModelPath(whisper), nil)
	assert.False(t, m.IsDownloaded(whisper), "empty file is not a model")

	writeFile(t, m.GetModelPath(whisper), []byte("ggml"))
	assert.True(t, m.IsDownloaded(whisper))
	assert.True(t, m.IsAvailable("whisper-base"))
	assert.False(t, m.IsAvailable("unknown"))

	onnx, _ := GetModel("onnx-whisper-tiny")
	writeFile(t, m.GetModelPath(onnx), []byte("onnx"))
	assert.False(t, m.IsDownloaded(onnx), "onnx model needs its vocab")
	writeFile(t, m.GetVocabPath(onnx), []byte(`{"a":0}`))
	assert.True(t, m.IsDownloaded(onnx))

	vosk, _ := GetModel("vosk-en-small")
	writeFile(t, m.GetModelPath(vosk), []byte("not a dir"))
	assert.False(t, m.IsDownloaded(vosk))

	ids := make([]string, 0)
	for _, info := range m.ListDownloaded() {
		ids = append(ids, info.ID)
	}
	assert.ElementsMatch(t, []string{"whisper-base", "onnx-whisper-tiny"}, ids)
}

func TestDownloadFile(t *testing.T) {
	payload := bytes.Repeat([]byte("w"), 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	info := ModelInfo{ID: "test", Engine: EngineWhisper, Filename: "ggml-test.bin", URL: srv.URL + "/model"}
	progress := make(chan Progress, 1024)

	require.NoError(t, m.Download(context.Background(), info, progress))
	assert.True(t, m.IsDownloaded(info))

	data, err := os.ReadFile(m.GetModelPath(info))
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = os.Stat(m.GetModelPath(info) + ".tmp")
	assert.True(t, os.IsNotExist(err))

	var last Progress
	for len(progress) > 0 {
		last = <-progress
	}
	assert.True(t, last.Done)
	assert.Equal(t, int64(len(payload)), last.Total)
}

func TestDownloadWithVocab(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model.onnx":
			_, _ = w.Write([]byte("graph"))
		case "/vocab.json":
			_, _ = w.Write([]byte(`{"hello":0}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	info := ModelInfo{
		ID: "onnx-test", Engine: EngineOnnx,
		Filename: "test.onnx", URL: srv.URL + "/model.onnx",
		VocabFilename: "test.vocab.json", VocabURL: srv.URL + "/vocab.json",
	}
	require.NoError(t, m.Download(context.Background(), info, nil))
	assert.True(t, m.IsDownloaded(info))

	require.NoError(t, m.Delete(info))
	assert.False(t, m.IsDownloaded(info))
	_, err = os.Stat(m.GetVocabPath(info))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	info := ModelInfo{ID: "missing", Engine: EngineWhisper, Filename: "missing.bin", URL: srv.URL}
	err = m.Download(context.Background(), info, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, m.IsDownloaded(info))
}

func TestDownloadManualModel(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	info, ok := GetModel("onnx-whisper-base")
	require.True(t, ok)

	err = m.Download(context.Background(), info, nil)
	require.ErrorIs(t, err, ErrManualInstall)
	assert.Contains(t, err.Error(), m.GetModelPath(info))
	_, err = os.Stat(m.GetVocabPath(info))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadAndUnzip(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	f, err := zw.Create("vosk-model-test/am/final.mdl")
	require.NoError(t, err)
	_, err = f.Write([]byte("model"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive.Bytes())
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	info := ModelInfo{ID: "vosk-test", Engine: EngineVosk, Filename: "vosk-model-test", URL: srv.URL, IsZip: true}
	require.NoError(t, m.Download(context.Background(), info, nil))
	assert.True(t, m.IsDownloaded(info))

	data, err := os.ReadFile(filepath.Join(m.GetModelPath(info), "am", "final.mdl"))
	require.NoError(t, err)
	assert.Equal(t, "model", string(data))
}

func TestUnzipRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")

	out, err := os.Create(src)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	f, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, _ = f.Write([]byte("x"))
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	err = unzip(src, filepath.Join(dir, "dest"))
	require.Error(t, err)
}
