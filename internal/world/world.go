package world

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// World владеет воксельной картой чанка: генерирует ландшафт и руды,
// отвечает на запросы колонок для коллизий и граней для отображения.
// Не безопасен для конкурентного использования; синхронизацию делает владелец.
type World struct {
	seed     int64
	rng      *rand.Rand
	dirt     DirtSource
	chunk    *Chunk
	revision uint64                // растёт при полной перестройке карты
	changes  map[vec.Vec3]struct{} // клетки, изменённые после последнего DrainChanges
	logger   *logging.Logger
}

// Option настраивает World
type Option func(*World)

// WithDirtSource задаёт источник толщины слоя земли
func WithDirtSource(src DirtSource) Option {
	return func(w *World) {
		if src != nil {
			w.dirt = src
		}
	}
}

// WithLogger задаёт логгер мира
func WithLogger(l *logging.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// New создаёт пустой мир с указанным сидом
func New(seed int64, opts ...Option) *World {
	w := &World{
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		dirt:    DirtUniform{},
		changes: make(map[vec.Vec3]struct{}),
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Seed возвращает сид мира
func (w *World) Seed() int64 { return w.seed }

// Revision возвращает номер полной перестройки карты
func (w *World) Revision() uint64 { return w.revision }

// Generated возвращает true после успешного Generate
func (w *World) Generated() bool { return w.chunk != nil }

// Dimensions возвращает размеры чанка (0,0,0 до генерации)
func (w *World) Dimensions() (width, depth, layers int) {
	if w.chunk == nil {
		return 0, 0, 0
	}
	return w.chunk.Width(), w.chunk.Depth(), w.chunk.Layers()
}

// Chunk возвращает текущую воксельную карту (nil до генерации)
func (w *World) Chunk() *Chunk { return w.chunk }

// Generate очищает карту и строит слоистый ландшафт.
// Неположительный размер — ошибка конфигурации, карта при этом не трогается.
func (w *World) Generate(width, depth, maxLayers int) error {
	started := time.Now()

	chunk, err := generateChunk(width, depth, maxLayers, w.rng, w.dirt)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	w.chunk = chunk
	w.revision++
	w.changes = make(map[vec.Vec3]struct{})

	w.logger.Debug("Ландшафт %dx%dx%d сгенерирован за %v (%d блоков)",
		width, depth, maxLayers, time.Since(started), chunk.Len())
	return nil
}

// PlaceOreVeins размещает рудные жилы по спецификациям в порядке их следования
func (w *World) PlaceOreVeins(specs []OreVeinSpec) (VeinReport, error) {
	if w.chunk == nil {
		return VeinReport{}, fmt.Errorf("place ore veins: %w", ErrNotGenerated)
	}

	report, err := w.placeOreVeins(specs)
	if err != nil {
		return VeinReport{}, fmt.Errorf("place ore veins: %w", err)
	}
	w.revision++

	for _, res := range report.Results {
		if res.Skipped {
			w.logger.Debug("Руда %s пропущена: пустой диапазон глубин", res.Ore)
			continue
		}
		w.logger.Debug("Руда %s: %d жил, %d/%d блоков", res.Ore, res.Veins, res.Placed, res.Requested)
	}
	return report, nil
}

// TopSurfaceLayer возвращает индекс первого занятого слоя колонки (gx, gz).
// false — колонка пуста или вне чанка; это штатная ситуация, не ошибка.
func (w *World) TopSurfaceLayer(gx, gz int) (int, bool) {
	if w.chunk == nil {
		return 0, false
	}
	return surfaceOf(w.chunk, gx, gz)
}

// ExposedFaces возвращает грани клетки, соседи которых пусты
func (w *World) ExposedFaces(gx, gy, gz int) Faces {
	if w.chunk == nil {
		return AllFaces
	}
	return exposedFaces(w.chunk, columnPos(gx, gy, gz))
}

// Block возвращает тип блока в клетке; false — воздух или вне чанка
func (w *World) Block(p vec.Vec3) (block.BlockID, bool) {
	if w.chunk == nil {
		return block.AirBlockID, false
	}
	return w.chunk.Get(p)
}

// Break удаляет блок и возвращает его прежний тип
func (w *World) Break(p vec.Vec3) (block.BlockID, bool) {
	prev, ok := w.Block(p)
	if !ok {
		return block.AirBlockID, false
	}
	w.chunk.Set(p, block.AirBlockID)
	w.changes[p] = struct{}{}
	return prev, true
}

// Place ставит твёрдый блок в пустую клетку внутри чанка
func (w *World) Place(p vec.Vec3, id block.BlockID) bool {
	if w.chunk == nil || !w.chunk.InBounds(p) || !block.IsSolid(id) {
		return false
	}
	if w.chunk.Occupied(p) {
		return false
	}
	w.chunk.Set(p, id)
	w.changes[p] = struct{}{}
	return true
}

// Visible возвращает занятые клетки хотя бы с одной открытой гранью.
// Полностью закрытые клетки отображать не нужно.
func (w *World) Visible() []Voxel {
	if w.chunk == nil {
		return nil
	}
	out := make([]Voxel, 0)
	w.chunk.Range(func(p vec.Vec3, id block.BlockID) bool {
		if f := exposedFaces(w.chunk, p); f != 0 {
			out = append(out, Voxel{Pos: p, ID: id, Faces: f})
		}
		return true
	})
	return out
}

// Dirty возвращает true, если после последнего DrainChanges были правки
func (w *World) Dirty() bool { return len(w.changes) > 0 }

// DrainChanges возвращает изменённые клетки и их занятых соседей
// (у соседей могли открыться или закрыться грани) и очищает журнал.
// Удалённая клетка приходит с ID=AirBlockID и Faces=0.
func (w *World) DrainChanges() []Voxel {
	if len(w.changes) == 0 || w.chunk == nil {
		return nil
	}

	affected := make(map[vec.Vec3]struct{}, len(w.changes)*7)
	for p := range w.changes {
		affected[p] = struct{}{}
		for _, n := range p.Neighbors() {
			if w.chunk.Occupied(n) {
				affected[n] = struct{}{}
			}
		}
	}
	w.changes = make(map[vec.Vec3]struct{})

	out := make([]Voxel, 0, len(affected))
	for p := range affected {
		id, ok := w.chunk.Get(p)
		v := Voxel{Pos: p, ID: id}
		if ok {
			v.Faces = exposedFaces(w.chunk, p)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Y < b.Y
	})
	return out
}

// Counts возвращает количество блоков каждого типа
func (w *World) Counts() map[block.BlockID]int {
	out := make(map[block.BlockID]int)
	if w.chunk == nil {
		return out
	}
	w.chunk.Range(func(_ vec.Vec3, id block.BlockID) bool {
		out[id]++
		return true
	})
	return out
}
