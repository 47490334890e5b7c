package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// NoiseField — 2D поле шума Перлина со своим сидом и масштабом.
// Значения нормализованы в [0, 1].
type NoiseField struct {
	noise *perlin.Perlin
	scale float64
}

// NewNoiseField создаёт поле шума. scale <= 0 заменяется на 0.1
func NewNoiseField(seed int64, scale float64) *NoiseField {
	if scale <= 0 {
		scale = 0.1
	}
	return &NoiseField{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		scale: scale,
	}
}

// At возвращает значение шума для целочисленной клетки (от 0 до 1)
func (f *NoiseField) At(x, z int) float64 {
	n := f.noise.Noise2D(float64(x)*f.scale, float64(z)*f.scale)

	// Преобразуем [-1, 1] в [0, 1] и подрезаем выбросы октав
	v := (n + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
