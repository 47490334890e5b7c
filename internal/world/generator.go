package world

import (
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Границы количества слоёв земли под травой
const (
	MinDirtLayers = 2
	MaxDirtLayers = 3
)

// DirtSource выбирает количество слоёв земли для колонки.
// Результат обязан лежать в [MinDirtLayers, MaxDirtLayers].
type DirtSource interface {
	DirtLayers(gx, gz int, rng *rand.Rand) int
}

// DirtUniform выбирает 2 или 3 слоя равновероятно
type DirtUniform struct{}

// DirtLayers реализует DirtSource
func (DirtUniform) DirtLayers(_, _ int, rng *rand.Rand) int {
	return MinDirtLayers + rng.Intn(MaxDirtLayers-MinDirtLayers+1)
}

// DirtNoise берёт толщину земли из поля шума Перлина: соседние колонки
// получают похожую толщину, образуя пятна вместо «белого шума».
type DirtNoise struct {
	field     *util.NoiseField
	Threshold float64 // значение шума, выше которого земля толще
}

// NewDirtNoise создаёт источник толщины земли на шуме Перлина
func NewDirtNoise(seed int64, scale float64) *DirtNoise {
	return &DirtNoise{
		field:     util.NewNoiseField(seed, scale),
		Threshold: 0.5,
	}
}

// DirtLayers реализует DirtSource
func (d *DirtNoise) DirtLayers(gx, gz int, _ *rand.Rand) int {
	if d.field.At(gx, gz) >= d.Threshold {
		return MaxDirtLayers
	}
	return MinDirtLayers
}

// ValidateDimensions проверяет размеры чанка
func ValidateDimensions(width, depth, maxLayers int) error {
	if width <= 0 || depth <= 0 || maxLayers <= 0 {
		return fmt.Errorf("%w: размеры должны быть положительными, получено %dx%dx%d",
			ErrConfiguration, width, depth, maxLayers)
	}
	return nil
}

// generateChunk строит слоистый ландшафт: трава на слое 0, 2–3 слоя земли,
// ниже до maxLayers-1 камень. Колонки заполняются параллельно по рядам gx;
// каждый ряд пишет только свои ключи и использует свой RNG, сиды рядов
// берутся из rng последовательно до запуска горутин, поэтому результат
// детерминирован для одного сида. Возврат из функции — барьер завершения.
func generateChunk(width, depth, maxLayers int, rng *rand.Rand, dirt DirtSource) (*Chunk, error) {
	if err := ValidateDimensions(width, depth, maxLayers); err != nil {
		return nil, err
	}

	chunk := NewChunk(width, depth, maxLayers)

	rowSeeds := make([]int64, width)
	for gx := range rowSeeds {
		rowSeeds[gx] = rng.Int63()
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for gx := 0; gx < width; gx++ {
		g.Go(func() error {
			rowRNG := rand.New(rand.NewSource(rowSeeds[gx]))
			for gz := 0; gz < depth; gz++ {
				fillColumn(chunk, gx, gz, dirt.DirtLayers(gx, gz, rowRNG))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunk, nil
}

// fillColumn заполняет одну колонку сверху вниз
func fillColumn(chunk *Chunk, gx, gz, dirtLayers int) {
	column, _ := chunk.Column(gx, gz)
	for gy := range column {
		switch {
		case gy == 0:
			column[gy] = block.GrassBlockID
		case gy <= dirtLayers:
			column[gy] = block.DirtBlockID
		default:
			column[gy] = block.StoneBlockID
		}
	}
}

// DirtDepth возвращает количество слоёв земли под травой в колонке
// (0 для пустой колонки или колонки вне чанка)
func (c *Chunk) DirtDepth(gx, gz int) int {
	column, ok := c.Column(gx, gz)
	if !ok {
		return 0
	}
	n := 0
	for gy := 1; gy < len(column) && column[gy] == block.DirtBlockID; gy++ {
		n++
	}
	return n
}

// surfaceOf ищет первый занятый слой колонки
func surfaceOf(c *Chunk, gx, gz int) (int, bool) {
	column, ok := c.Column(gx, gz)
	if !ok {
		return 0, false
	}
	for gy, id := range column {
		if id != block.AirBlockID {
			return gy, true
		}
	}
	return 0, false
}

// columnPos — вспомогательный конструктор координаты
func columnPos(gx, gy, gz int) vec.Vec3 {
	return vec.Vec3{X: gx, Y: gy, Z: gz}
}
