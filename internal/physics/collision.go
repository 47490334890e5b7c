package physics

import "math"

// SurfaceQuery отвечает на запрос верхнего занятого слоя колонки.
// false — данных нет (колонка пуста или вне мира).
type SurfaceQuery interface {
	TopSurfaceLayer(gx, gz int) (int, bool)
}

// SurfaceFunc адаптирует функцию к SurfaceQuery
type SurfaceFunc func(gx, gz int) (int, bool)

// TopSurfaceLayer реализует SurfaceQuery
func (f SurfaceFunc) TopSurfaceLayer(gx, gz int) (int, bool) { return f(gx, gz) }

// ColumnOf возвращает колонку, в которой стоит точка (x, z)
func ColumnOf(x, z, blockSize float64) (gx, gz int) {
	return int(math.Floor(x / blockSize)), int(math.Floor(z / blockSize))
}

// surfaceElevation возвращает высоту верхней грани колонки под (x, z).
// При отсутствии данных используется пол на FallbackLayers, чтобы игрок
// не падал бесконечно; fallback=true в этом случае.
func surfaceElevation(q SurfaceQuery, cfg Config, x, z float64) (elevation float64, fallback bool) {
	gx, gz := ColumnOf(x, z, cfg.BlockSize)
	if q != nil {
		if layer, ok := q.TopSurfaceLayer(gx, gz); ok {
			return float64(layer) * cfg.BlockSize, false
		}
	}
	return float64(cfg.FallbackLayers) * cfg.BlockSize, true
}
