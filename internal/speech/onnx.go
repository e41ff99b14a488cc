package speech

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxRecognizer реализует Recognizer через ONNX Runtime.
// Граф принимает log-mel [1, 80, 3000] и возвращает id токенов.
type OnnxRecognizer struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	vocab   *vocab
	mel     *melFrontend
}

// ONNX Runtime инициализируется один раз на процесс.
var (
	onnxInitialized bool
	onnxInitMu      sync.Mutex
)

func initONNXRuntime() error {
	onnxInitMu.Lock()
	defer onnxInitMu.Unlock()

	if onnxInitialized {
		return nil
	}

	libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")
	if libPath == "" {
		for _, path := range []string{
			"./libonnxruntime.so",
			"./libonnxruntime.dylib",
			"./onnxruntime.dll",
			"/usr/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		} {
			if _, err := os.Stat(path); err == nil {
				libPath = path
				break
			}
		}
	}

	if libPath == "" {
		return errors.New("библиотека ONNX Runtime не найдена (ONNXRUNTIME_SHARED_LIBRARY_PATH)")
	}

	log.Printf("ONNX Runtime: %s", libPath)
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return err
	}

	onnxInitialized = true
	return nil
}

// NewOnnx загружает ONNX граф Whisper и его словарь.
// Раздельные encoder/decoder экспорты не поддерживаются.
func NewOnnx(modelPath, vocabPath string, englishOnly bool) (*OnnxRecognizer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл модели не найден: %s", modelPath)
	}

	voc, err := loadVocab(vocabPath, englishOnly)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки словаря: %w", err)
	}

	if err := initONNXRuntime(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации ONNX Runtime: %w", err)
	}

	inputInfo, outputInfo, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения входов/выходов модели: %w", err)
	}
	if len(inputInfo) == 0 || len(outputInfo) == 0 {
		return nil, errors.New("у модели нет входов или выходов")
	}

	if err := checkGraph(inputInfo[0], outputInfo[0]); err != nil {
		return nil, fmt.Errorf("%w: %s", err, modelPath)
	}

	inputNames := []string{inputInfo[0].Name}
	outputNames := []string{outputInfo[0].Name}
	log.Printf("ONNX модель: входы %v, выходы %v", inputNames, outputNames)

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания опций сессии: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания ONNX сессии: %w", err)
	}

	return &OnnxRecognizer{
		session: session,
		vocab:   voc,
		mel:     newMelFrontend(),
	}, nil
}

// ErrUnsupportedGraph возвращается для графов, которые не принимают
// log-mel целиком или не выдают id токенов (например, раздельный encoder).
var ErrUnsupportedGraph = errors.New("неподдерживаемый ONNX граф")

// checkGraph проверяет, что первый вход float [1, 80, 3000]
// (-1 допускается для динамических осей), а первый выход целочисленный.
func checkGraph(in, out ort.InputOutputInfo) error {
	if in.DataType != ort.TensorElementDataTypeFloat {
		return fmt.Errorf("%w: вход %s не float", ErrUnsupportedGraph, in.Name)
	}
	dims := in.Dimensions
	if len(dims) != 3 || !dimMatches(dims[1], melBins) || !dimMatches(dims[2], melFrames) {
		return fmt.Errorf("%w: вход %s имеет форму %v", ErrUnsupportedGraph, in.Name, dims)
	}
	switch out.DataType {
	case ort.TensorElementDataTypeInt32, ort.TensorElementDataTypeInt64:
		return nil
	default:
		return fmt.Errorf("%w: выход %s не содержит id токенов", ErrUnsupportedGraph, out.Name)
	}
}

func dimMatches(dim int64, want int) bool {
	return dim == -1 || dim == int64(want)
}

// Name возвращает название движка.
func (o *OnnxRecognizer) Name() string {
	return "onnx"
}

// Transcribe распознаёт первые 30 секунд записи.
// Язык и перевод зашиты в граф, параметры только логируются.
func (o *OnnxRecognizer) Transcribe(samples []float32, lang string, translate bool) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return "", ErrModelNotLoaded
	}
	if translate || (lang != "" && lang != "auto") {
		log.Printf("ONNX: язык %q и перевод=%t задаются графом модели", lang, translate)
	}
	if len(samples) > melSamples {
		log.Printf("ONNX: запись длиннее %d сек, остаток отброшен", melChunkSecs)
	}

	features := o.mel.Compute(samples)
	input, err := ort.NewTensor(ort.NewShape(1, melBins, melFrames), features)
	if err != nil {
		return "", fmt.Errorf("ошибка создания входного тензора: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return "", fmt.Errorf("ошибка инференса: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	ids, err := tokenIDs(outputs[0])
	if err != nil {
		return "", err
	}

	return o.vocab.Decode(ids), nil
}

// tokenIDs достаёт id токенов из выходного тензора int32 или int64.
func tokenIDs(v ort.Value) ([]int, error) {
	switch t := v.(type) {
	case *ort.Tensor[int32]:
		data := t.GetData()
		ids := make([]int, len(data))
		for i, id := range data {
			ids[i] = int(id)
		}
		return ids, nil
	case *ort.Tensor[int64]:
		data := t.GetData()
		ids := make([]int, len(data))
		for i, id := range data {
			ids[i] = int(id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("неожиданный тип выхода модели: %T", v)
	}
}

// Close освобождает ресурсы.
func (o *OnnxRecognizer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
}
