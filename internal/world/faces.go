package world

import (
	"strings"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Faces — битовое множество открытых граней клетки, бит = vec.Direction
type Faces uint8

// AllFaces — все шесть граней открыты
const AllFaces Faces = 1<<vec.DirectionCount - 1

// Has проверяет, открыта ли грань d
func (f Faces) Has(d vec.Direction) bool {
	return f&(1<<d) != 0
}

// Count возвращает количество открытых граней
func (f Faces) Count() int {
	n := 0
	for d := vec.Direction(0); d < vec.DirectionCount; d++ {
		if f.Has(d) {
			n++
		}
	}
	return n
}

// Directions возвращает открытые грани в порядке vec.Direction
func (f Faces) Directions() []vec.Direction {
	out := make([]vec.Direction, 0, vec.DirectionCount)
	for d := vec.Direction(0); d < vec.DirectionCount; d++ {
		if f.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String возвращает имена граней через запятую
func (f Faces) String() string {
	if f == 0 {
		return "none"
	}
	names := make([]string, 0, vec.DirectionCount)
	for _, d := range f.Directions() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// Voxel — занятая клетка для слоя отображения
type Voxel struct {
	Pos   vec.Vec3
	ID    block.BlockID
	Faces Faces
}

// exposedFaces возвращает грани, соседняя клетка которых пуста.
// Сосед за границей чанка считается пустым.
func exposedFaces(c *Chunk, p vec.Vec3) Faces {
	var f Faces
	for d := vec.Direction(0); d < vec.DirectionCount; d++ {
		if !c.Occupied(p.Neighbor(d)) {
			f |= 1 << d
		}
	}
	return f
}
