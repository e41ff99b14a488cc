package speech

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMelSilence(t *testing.T) {
	m := newMelFrontend()

	out := m.Compute(nil)
	require.Len(t, out, melBins*melFrames)

	// log10(1e-10) = -10, после нормализации (-10 + 4) / 4
	for i, v := range out {
		if !assert.InDelta(t, -1.5, v, 1e-6, "index %d", i) {
			break
		}
	}
}

func TestMelToneHasEnergyInLowBins(t *testing.T) {
	m := newMelFrontend()

	samples := make([]float32, melSampleRate)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/melSampleRate))
	}

	out := m.Compute(samples)
	require.Len(t, out, melBins*melFrames)

	var maxVal float32 = -10
	maxBin := -1
	frame := 50
	for b := 0; b < melBins; b++ {
		if v := out[b*melFrames+frame]; v > maxVal {
			maxVal, maxBin = v, b
		}
	}

	// 440 Гц попадает в нижнюю треть mel-шкалы
	assert.Greater(t, maxBin, 0)
	assert.Less(t, maxBin, melBins/3)

	globalMax := out[0]
	for _, v := range out {
		if v > globalMax {
			globalMax = v
		}
	}
	assert.GreaterOrEqual(t, globalMax, maxVal)

	// После окончания тона спектр прижат к полу max-8
	tail := out[maxBin*melFrames+melFrames-1]
	assert.InDelta(t, globalMax-2.0, tail, 1e-5)
}

func TestMelTruncatesLongInput(t *testing.T) {
	m := newMelFrontend()

	long := make([]float32, melSamples+melSampleRate)
	out := m.Compute(long)
	assert.Len(t, out, melBins*melFrames)
}

func TestSlaneyFilterbank(t *testing.T) {
	filters := slaneyMelFilterbank(melNFFT, melBins, melSampleRate)
	require.Len(t, filters, melBins)

	for b, row := range filters {
		require.Len(t, row, melNFFT/2+1)
		var sum float64
		for _, w := range row {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.Greater(t, sum, 0.0, "пустой фильтр %d", b)
	}
}

func TestPeriodicHann(t *testing.T) {
	w := periodicHann(4)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5}, w, 1e-12)
}

func TestReflectPad(t *testing.T) {
	got := reflectPad([]float64{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 4, 5, 4, 3}, got)
}
