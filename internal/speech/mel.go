package speech

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Параметры log-mel спектрограммы Whisper.
const (
	melSampleRate = 16000
	melNFFT       = 400
	melHop        = 160
	melBins       = 80
	melChunkSecs  = 30
	melSamples    = melSampleRate * melChunkSecs // 480000
	melFrames     = melSamples / melHop          // 3000
)

// melFrontend считает входной тензор Whisper [80, 3000] для окна 30 секунд.
type melFrontend struct {
	filters [][]float64
	window  []float64
	fft     *fourier.FFT
}

func newMelFrontend() *melFrontend {
	return &melFrontend{
		filters: slaneyMelFilterbank(melNFFT, melBins, melSampleRate),
		window:  periodicHann(melNFFT),
		fft:     fourier.NewFFT(melNFFT),
	}
}

// Compute возвращает спектрограмму построчно: mel-полоса за mel-полосой.
// Аудио длиннее 30 секунд обрезается, короче - дополняется тишиной.
func (m *melFrontend) Compute(samples []float32) []float32 {
	input := make([]float64, melSamples)
	for i := 0; i < len(samples) && i < melSamples; i++ {
		input[i] = float64(samples[i])
	}

	padded := reflectPad(input, melNFFT/2)

	logSpec := make([]float64, melBins*melFrames)
	frame := make([]float64, melNFFT)
	power := make([]float64, melNFFT/2+1)
	var coeffs []complex128
	maxVal := math.Inf(-1)

	// Последний кадр STFT отбрасывается, как в Whisper
	for t := 0; t < melFrames; t++ {
		start := t * melHop
		for i := 0; i < melNFFT; i++ {
			frame[i] = padded[start+i] * m.window[i]
		}

		coeffs = m.fft.Coefficients(coeffs, frame)
		for k := range power {
			re, im := real(coeffs[k]), imag(coeffs[k])
			power[k] = re*re + im*im
		}

		for b := 0; b < melBins; b++ {
			var sum float64
			for k, w := range m.filters[b] {
				if w != 0 {
					sum += w * power[k]
				}
			}
			v := math.Log10(math.Max(sum, 1e-10))
			logSpec[b*melFrames+t] = v
			if v > maxVal {
				maxVal = v
			}
		}
	}

	out := make([]float32, len(logSpec))
	floor := maxVal - 8.0
	for i, v := range logSpec {
		out[i] = float32((math.Max(v, floor) + 4.0) / 4.0)
	}
	return out
}

// reflectPad дополняет сигнал отражением на pad сэмплов с каждой стороны.
func reflectPad(x []float64, pad int) []float64 {
	n := len(x)
	out := make([]float64, n+2*pad)
	copy(out[pad:], x)
	for i := 0; i < pad; i++ {
		out[pad-1-i] = x[i+1]
		out[pad+n+i] = x[n-2-i]
	}
	return out
}

// periodicHann - окно Ханна как torch.hann_window(periodic=True).
func periodicHann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}

// slaneyMelFilterbank - mel-фильтры librosa (htk=False, norm="slaney"),
// на которых обучался Whisper.
func slaneyMelFilterbank(nFFT, nMels, sampleRate int) [][]float64 {
	const (
		fSp       = 200.0 / 3
		minLogHz  = 1000.0
		minLogMel = minLogHz / fSp
	)
	logStep := math.Log(6.4) / 27.0

	hzToMel := func(hz float64) float64 {
		if hz < minLogHz {
			return hz / fSp
		}
		return minLogMel + math.Log(hz/minLogHz)/logStep
	}
	melToHz := func(mel float64) float64 {
		if mel < minLogMel {
			return mel * fSp
		}
		return minLogHz * math.Exp(logStep*(mel-minLogMel))
	}

	numBins := nFFT/2 + 1
	fftFreqs := make([]float64, numBins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(nFFT)
	}

	melMax := hzToMel(float64(sampleRate) / 2)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = melToHz(melMax * float64(i) / float64(nMels+1))
	}

	filters := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		filters[m] = make([]float64, numBins)
		lowerW := melF[m+1] - melF[m]
		upperW := melF[m+2] - melF[m+1]
		enorm := 2.0 / (melF[m+2] - melF[m])

		for k, f := range fftFreqs {
			lower := (f - melF[m]) / lowerW
			upper := (melF[m+2] - f) / upperW
			v := math.Min(lower, upper)
			if v > 0 {
				filters[m][k] = v * enorm
			}
		}
	}

	return filters
}
