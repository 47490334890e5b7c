package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// MotionState — режим вертикального движения
type MotionState uint8

const (
	Grounded MotionState = iota
	Airborne
)

// String возвращает имя состояния
func (s MotionState) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Airborne:
		return "airborne"
	default:
		return fmt.Sprintf("MotionState(%d)", uint8(s))
	}
}

// Pose — положение игрока. Position — начало координат камеры (глаза),
// ноги находятся на EyeHeight глубже (+Y).
type Pose struct {
	Position  mgl64.Vec3
	Yaw       float64 // градусы, без ограничения
	Pitch     float64 // градусы, в пределах ±MaxPitch
	VelocityY float64 // +Y — вниз
	Grounded  bool
	EyeHeight float64
}

// Feet возвращает высоту ног
func (p Pose) Feet() float64 {
	return p.Position.Y() + p.EyeHeight
}
