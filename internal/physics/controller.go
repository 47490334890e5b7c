package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// TickResult описывает, что произошло за тик
type TickResult struct {
	Landed   bool // переход Airborne -> Grounded
	Jumped   bool // прыжок принят
	Fallback bool // под игроком нет данных, использован запасной пол
	Column   [2]int
}

// Controller интегрирует движение игрока и разрешает вертикальные
// столкновения с колонками мира. Ни одна операция не возвращает ошибку:
// входные значения должны быть конечными (проверка — на границе ввода).
type Controller struct {
	cfg     Config
	surface SurfaceQuery
	pose    Pose
	state   MotionState

	forward float64
	strafe  float64
	jump    bool
}

// NewController создаёт контроллер и ставит игрока ногами на поверхность
// колонки появления
func NewController(cfg Config, surface SurfaceQuery) *Controller {
	c := &Controller{cfg: cfg, surface: surface}
	c.Spawn(cfg.SpawnX, cfg.SpawnZ)
	return c
}

// Spawn ставит игрока в центр колонки (gx, gz) на её поверхность
func (c *Controller) Spawn(gx, gz int) {
	x := (float64(gx) + 0.5) * c.cfg.BlockSize
	z := (float64(gz) + 0.5) * c.cfg.BlockSize
	surface, _ := surfaceElevation(c.surface, c.cfg, x, z)

	c.pose = Pose{
		Position:  mgl64.Vec3{x, surface - c.cfg.EyeHeight, z},
		Yaw:       c.pose.Yaw,
		Pitch:     c.pose.Pitch,
		Grounded:  true,
		EyeHeight: c.cfg.EyeHeight,
	}
	c.state = Grounded
	c.jump = false
}

// SetSurface заменяет источник запросов колонок (после перегенерации мира)
func (c *Controller) SetSurface(q SurfaceQuery) {
	c.surface = q
}

// Teleport переносит игрока в точку; состояние уточнится на следующем тике
func (c *Controller) Teleport(pos mgl64.Vec3) {
	c.pose.Position = pos
	c.pose.VelocityY = 0
	c.pose.Grounded = false
	c.state = Airborne
}

// SetHorizontalIntent задаёт намерение вперёд/назад и вбок, каждое в [-1, 1]
func (c *Controller) SetHorizontalIntent(forward, strafe float64) {
	c.forward = mgl64.Clamp(forward, -1, 1)
	c.strafe = mgl64.Clamp(strafe, -1, 1)
}

// Rotate накапливает рыскание без ограничений и тангаж в пределах ±MaxPitch
func (c *Controller) Rotate(deltaYaw, deltaPitch float64) {
	c.pose.Yaw += deltaYaw
	c.pose.Pitch = mgl64.Clamp(c.pose.Pitch+deltaPitch, -c.cfg.MaxPitch, c.cfg.MaxPitch)
}

// RequestJump запрашивает прыжок на следующем тике.
// Если игрок не на земле, запрос молча отбрасывается.
func (c *Controller) RequestJump() {
	c.jump = true
}

// Tick выполняет один шаг симуляции:
// горизонталь по yaw, гравитация, прижатие к поверхности колонки, прыжок.
func (c *Controller) Tick() TickResult {
	var res TickResult
	wasGrounded := c.state == Grounded

	// Намерение поворачивается на yaw: «вперёд» всегда по направлению взгляда
	rotation := mgl64.Rotate2D(mgl64.DegToRad(c.pose.Yaw))
	move := rotation.Mul2x1(mgl64.Vec2{c.forward, c.strafe}).Mul(c.cfg.Speed)
	c.pose.Position[0] += move.X()
	c.pose.Position[2] += move.Y()

	// Гравитация действует всегда, на земле скорость тут же обнуляется
	c.pose.VelocityY += c.cfg.Gravity
	c.pose.Position[1] += c.pose.VelocityY

	surface, fallback := surfaceElevation(c.surface, c.cfg, c.pose.Position.X(), c.pose.Position.Z())
	res.Fallback = fallback
	res.Column[0], res.Column[1] = ColumnOf(c.pose.Position.X(), c.pose.Position.Z(), c.cfg.BlockSize)

	if c.pose.Feet() >= surface {
		c.pose.Position[1] = surface - c.cfg.EyeHeight
		c.pose.VelocityY = 0
		c.state = Grounded
		res.Landed = !wasGrounded
	} else {
		c.state = Airborne
	}

	if c.jump {
		if c.state == Grounded {
			c.pose.VelocityY = -c.cfg.JumpImpulse
			c.state = Airborne
			res.Jumped = true
		}
		c.jump = false
	}

	c.pose.Grounded = c.state == Grounded
	return res
}

// Pose возвращает копию текущего положения
func (c *Controller) Pose() Pose { return c.pose }

// State возвращает режим вертикального движения
func (c *Controller) State() MotionState { return c.state }

// Config возвращает настройки контроллера
func (c *Controller) Config() Config { return c.cfg }
