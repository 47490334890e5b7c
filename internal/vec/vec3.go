package vec

// Vec3 представляет трехмерную координату клетки сетки.
// Y растёт вглубь: Y=0 — поверхностный слой.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Direction — одно из шести осевых направлений
type Direction uint8

const (
	Up    Direction = iota // -Y, к поверхности
	Down                   // +Y, вглубь
	North                  // -Z
	South                  // +Z
	West                   // -X
	East                   // +X

	DirectionCount // всегда последний
)

var directionOffsets = [DirectionCount]Vec3{
	Up:    {Y: -1},
	Down:  {Y: 1},
	North: {Z: -1},
	South: {Z: 1},
	West:  {X: -1},
	East:  {X: 1},
}

var directionNames = [DirectionCount]string{"up", "down", "north", "south", "west", "east"}

// String возвращает имя направления
func (d Direction) String() string {
	if d < DirectionCount {
		return directionNames[d]
	}
	return "unknown"
}

// Offset возвращает единичный сдвиг для направления
func (d Direction) Offset() Vec3 {
	return directionOffsets[d]
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Neighbor возвращает соседнюю клетку в направлении d
func (v Vec3) Neighbor(d Direction) Vec3 {
	return v.Add(d.Offset())
}

// Neighbors возвращает шесть осевых соседей в порядке Direction
func (v Vec3) Neighbors() [DirectionCount]Vec3 {
	var out [DirectionCount]Vec3
	for d := Direction(0); d < DirectionCount; d++ {
		out[d] = v.Neighbor(d)
	}
	return out
}

// ManhattanTo возвращает манхэттенское расстояние до другой клетки
func (v Vec3) ManhattanTo(other Vec3) int {
	return abs(v.X-other.X) + abs(v.Y-other.Y) + abs(v.Z-other.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
