// Package icons рисует иконки трея для каждого состояния.
package icons

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const size = 64

// Иконки в формате PNG.
var (
	Idle       = mustRender(color.RGBA{128, 128, 128, 255}) // серый
	Recording  = mustRender(color.RGBA{220, 50, 50, 255})   // красный
	Processing = mustRender(color.RGBA{230, 160, 50, 255})  // оранжевый
	Loading    = mustRender(color.RGBA{88, 166, 255, 255})  // синий
)

// render рисует упрощённый микрофон: круг и ножку.
func render(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	centerX, centerY := size/2, size/2-4
	const radius = 20

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-centerX, y-centerY
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}

	for y := centerY + radius; y < centerY+radius+10 && y < size; y++ {
		for x := centerX - 3; x <= centerX+3; x++ {
			img.Set(x, y, c)
		}
	}

	return img
}

func mustRender(c color.RGBA) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, render(c)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
