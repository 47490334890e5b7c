package world

import (
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// BranchChance — вероятность добавить соседа во фронт жилы.
// Оставшиеся 10% обрезают ветку и ограничивают разрастание.
const BranchChance = 0.9

// OreVeinSpec описывает один тип рудных жил
type OreVeinSpec struct {
	Ore      block.BlockID // Рудный тег
	MinDepth int           // Минимальный слой (включительно)
	MaxDepth int           // Максимальный слой (включительно)
	Veins    int           // Жил на регион
	Size     int           // Целевой размер жилы в блоках
}

// DefaultOreVeins — таблица руд по умолчанию: от частого неглубокого угля
// до редких глубоких алмазов. Порядок задаёт приоритет при пересечении жил.
var DefaultOreVeins = []OreVeinSpec{
	{Ore: block.CoalOreBlockID, MinDepth: 3, MaxDepth: 40, Veins: 20, Size: 12},
	{Ore: block.IronOreBlockID, MinDepth: 6, MaxDepth: 48, Veins: 14, Size: 8},
	{Ore: block.LapisOreBlockID, MinDepth: 12, MaxDepth: 56, Veins: 3, Size: 6},
	{Ore: block.GoldOreBlockID, MinDepth: 16, MaxDepth: 64, Veins: 4, Size: 7},
	{Ore: block.RedstoneOreBlockID, MinDepth: 20, MaxDepth: 64, Veins: 6, Size: 6},
	{Ore: block.DiamondOreBlockID, MinDepth: 24, MaxDepth: 64, Veins: 2, Size: 5},
}

// Validate проверяет спецификацию жилы
func (s OreVeinSpec) Validate() error {
	if !block.IsOre(s.Ore) {
		return fmt.Errorf("%w: блок %s не является рудой", ErrConfiguration, s.Ore)
	}
	if s.MinDepth > s.MaxDepth {
		return fmt.Errorf("%w: %s: minDepth %d > maxDepth %d", ErrConfiguration, s.Ore, s.MinDepth, s.MaxDepth)
	}
	if s.Veins < 0 || s.Size < 0 {
		return fmt.Errorf("%w: %s: отрицательное количество жил или размер", ErrConfiguration, s.Ore)
	}
	return nil
}

// depthRange возвращает допустимый диапазон стартового слоя; ok=false — пустой
func (s OreVeinSpec) depthRange(maxLayers int) (lo, hi int, ok bool) {
	lo = max(1, s.MinDepth)
	hi = min(maxLayers-1, s.MaxDepth)
	return lo, hi, lo <= hi
}

// VeinResult — итог размещения одной спецификации
type VeinResult struct {
	Ore       block.BlockID
	Veins     int   // Запущено обходов
	Placed    int   // Перекрашено клеток всего
	Requested int   // Veins * Size
	Sizes     []int // Размер каждой жилы
	Skipped   bool  // Диапазон глубин пуст для этого мира
}

// VeinReport — итог PlaceOreVeins по всем спецификациям
type VeinReport struct {
	Results []VeinResult
}

// Placed возвращает общее количество рудных клеток по тегам
func (r VeinReport) Placed() map[block.BlockID]int {
	out := make(map[block.BlockID]int, len(r.Results))
	for _, res := range r.Results {
		out[res.Ore] += res.Placed
	}
	return out
}

// Total возвращает общее количество перекрашенных клеток
func (r VeinReport) Total() int {
	n := 0
	for _, res := range r.Results {
		n += res.Placed
	}
	return n
}

// placeOreVeins размещает жилы в чанке. Все спецификации проверяются до
// первой мутации, так что ошибка конфигурации не оставляет частичных жил.
func (w *World) placeOreVeins(specs []OreVeinSpec) (VeinReport, error) {
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return VeinReport{}, fmt.Errorf("ore spec #%d: %w", i, err)
		}
	}

	report := VeinReport{Results: make([]VeinResult, 0, len(specs))}
	for _, spec := range specs {
		res := VeinResult{Ore: spec.Ore, Requested: spec.Veins * spec.Size}

		lo, hi, ok := spec.depthRange(w.chunk.Layers())
		if !ok {
			res.Skipped = true
			report.Results = append(report.Results, res)
			continue
		}

		for i := 0; i < spec.Veins; i++ {
			start := columnPos(
				w.rng.Intn(w.chunk.Width()),
				lo+w.rng.Intn(hi-lo+1),
				w.rng.Intn(w.chunk.Depth()),
			)
			placed := w.growVein(start, spec.Ore, spec.Size)
			res.Veins++
			res.Placed += placed
			res.Sizes = append(res.Sizes, placed)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// growVein выполняет случайный обход от стартовой клетки.
// Из фронта извлекается равновероятно случайный элемент (не FIFO/LIFO),
// что даёт неровный «органический» кластер. Перекрашивается только камень,
// поэтому ранее размещённая руда не перезаписывается.
func (w *World) growVein(start vec.Vec3, ore block.BlockID, size int) int {
	frontier := []vec.Vec3{start}
	visited := make(map[vec.Vec3]struct{}, size*2)
	placed := 0

	for len(frontier) > 0 && placed < size {
		i := w.rng.Intn(len(frontier))
		cell := frontier[i]
		last := len(frontier) - 1
		frontier[i] = frontier[last]
		frontier = frontier[:last]

		if _, seen := visited[cell]; seen {
			continue
		}
		visited[cell] = struct{}{}

		if id, _ := w.chunk.Get(cell); id == block.StoneBlockID {
			w.chunk.Set(cell, ore)
			placed++
		}

		for _, n := range cell.Neighbors() {
			if !w.chunk.InBounds(n) {
				continue
			}
			if _, seen := visited[n]; seen {
				continue
			}
			if w.rng.Float64() < BranchChance {
				frontier = append(frontier, n)
			}
		}
	}
	return placed
}
