package physics

// Config — константы движения и столкновений.
// Единица расстояния — ребро блока, умноженное на BlockSize; скорости — за тик.
// Gravity и JumpImpulse подбираются парой: по умолчанию прыжок поднимает
// ноги примерно на один блок с небольшим запасом.
type Config struct {
	Speed          float64 // горизонтальное смещение за тик при единичном намерении
	Gravity        float64 // прирост вертикальной скорости за тик (+Y — вниз)
	JumpImpulse    float64 // модуль скорости прыжка, применяется со знаком минус
	EyeHeight      float64 // расстояние от ног до начала координат камеры
	MaxPitch       float64 // предел наклона камеры в градусах
	BlockSize      float64 // размер блока в мировых единицах
	FallbackLayers int     // глубина «пола» в слоях, если под игроком нет данных
	SpawnX         int     // колонка появления
	SpawnZ         int
}

// DefaultConfig возвращает настройки по умолчанию (60 тиков в секунду)
func DefaultConfig() Config {
	return Config{
		Speed:          0.08,
		Gravity:        0.01,
		JumpImpulse:    0.16,
		EyeHeight:      1.6,
		MaxPitch:       89,
		BlockSize:      1,
		FallbackLayers: 64,
	}
}

// JumpApex возвращает высоту подъёма ног при прыжке с места.
// Удобно для подбора пары Gravity/JumpImpulse.
func (c Config) JumpApex() float64 {
	if c.Gravity <= 0 {
		return 0
	}
	// Дискретная сумма v, v-g, v-2g, ... пока скорость направлена вверх
	apex := 0.0
	for v := c.JumpImpulse - c.Gravity; v > 0; v -= c.Gravity {
		apex += v
	}
	return apex
}
