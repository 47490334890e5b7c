package world

import (
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Chunk — воксельная карта одного чанка фиксированного размера.
// Ключ — координата клетки (gx, gy, gz); отсутствие ключа (AirBlockID) означает воздух.
// Хранится плоским массивом, колонка (gx, gz) лежит непрерывно по gy.
type Chunk struct {
	width  int
	depth  int
	layers int
	cells  []block.BlockID
}

// NewChunk создаёт пустой чанк указанного размера
func NewChunk(width, depth, layers int) *Chunk {
	return &Chunk{
		width:  width,
		depth:  depth,
		layers: layers,
		cells:  make([]block.BlockID, width*depth*layers),
	}
}

// Width возвращает размер по X
func (c *Chunk) Width() int { return c.width }

// Depth возвращает размер по Z
func (c *Chunk) Depth() int { return c.depth }

// Layers возвращает количество слоёв по Y
func (c *Chunk) Layers() int { return c.layers }

// InBounds проверяет, лежит ли клетка внутри чанка
func (c *Chunk) InBounds(p vec.Vec3) bool {
	return p.X >= 0 && p.X < c.width &&
		p.Z >= 0 && p.Z < c.depth &&
		p.Y >= 0 && p.Y < c.layers
}

func (c *Chunk) index(p vec.Vec3) int {
	return (p.X*c.depth+p.Z)*c.layers + p.Y
}

func (c *Chunk) pos(i int) vec.Vec3 {
	y := i % c.layers
	col := i / c.layers
	return vec.Vec3{X: col / c.depth, Y: y, Z: col % c.depth}
}

// Get возвращает тип блока. false — клетка пуста или вне границ
func (c *Chunk) Get(p vec.Vec3) (block.BlockID, bool) {
	if !c.InBounds(p) {
		return block.AirBlockID, false
	}
	id := c.cells[c.index(p)]
	return id, id != block.AirBlockID
}

// Occupied возвращает true, если в клетке есть блок
func (c *Chunk) Occupied(p vec.Vec3) bool {
	_, ok := c.Get(p)
	return ok
}

// Set записывает блок. AirBlockID удаляет ключ. Вне границ ничего не делает
func (c *Chunk) Set(p vec.Vec3, id block.BlockID) bool {
	if !c.InBounds(p) {
		return false
	}
	c.cells[c.index(p)] = id
	return true
}

// Column возвращает срез слоёв колонки (gx, gz) сверху вниз. Срез разделяет память с чанком
func (c *Chunk) Column(gx, gz int) ([]block.BlockID, bool) {
	if gx < 0 || gx >= c.width || gz < 0 || gz >= c.depth {
		return nil, false
	}
	start := (gx*c.depth + gz) * c.layers
	return c.cells[start : start+c.layers], true
}

// Len возвращает количество занятых клеток
func (c *Chunk) Len() int {
	n := 0
	for _, id := range c.cells {
		if id != block.AirBlockID {
			n++
		}
	}
	return n
}

// Range обходит занятые клетки в порядке колонок; fn возвращает false для остановки
func (c *Chunk) Range(fn func(p vec.Vec3, id block.BlockID) bool) {
	for i, id := range c.cells {
		if id == block.AirBlockID {
			continue
		}
		if !fn(c.pos(i), id) {
			return
		}
	}
}

// Keys возвращает координаты всех занятых клеток
func (c *Chunk) Keys() []vec.Vec3 {
	keys := make([]vec.Vec3, 0, c.Len())
	c.Range(func(p vec.Vec3, _ block.BlockID) bool {
		keys = append(keys, p)
		return true
	})
	return keys
}

// Clear удаляет все блоки
func (c *Chunk) Clear() {
	for i := range c.cells {
		c.cells[i] = block.AirBlockID
	}
}
