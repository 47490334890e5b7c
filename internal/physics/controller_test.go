package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// flatSurface — мир, где каждая колонка в [0,n)×[0,n) имеет поверхность layer
func flatSurface(n, layer int) SurfaceFunc {
	return func(gx, gz int) (int, bool) {
		if gx < 0 || gz < 0 || gx >= n || gz >= n {
			return 0, false
		}
		return layer, true
	}
}

// noGround — под игроком никогда нет данных
var noGround = SurfaceFunc(func(int, int) (int, bool) { return 0, false })

func TestSpawnIsGroundedOnSurface(t *testing.T) {
	c := NewController(DefaultConfig(), flatSurface(10, 0))

	pose := c.Pose()
	assert.Equal(t, Grounded, c.State())
	assert.True(t, pose.Grounded)
	assert.InDelta(t, 0.0, pose.Feet(), eps, "ноги на поверхности слоя 0")
	assert.Zero(t, pose.VelocityY)

	gx, gz := ColumnOf(pose.Position.X(), pose.Position.Z(), 1)
	assert.Equal(t, 0, gx)
	assert.Equal(t, 0, gz)
}

func TestSpawnOnDeeperColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnX, cfg.SpawnZ = 2, 3
	c := NewController(cfg, flatSurface(10, 4))

	assert.InDelta(t, 4.0, c.Pose().Feet(), eps)
	assert.InDelta(t, 2.5, c.Pose().Position.X(), eps, "центр колонки")
	assert.InDelta(t, 3.5, c.Pose().Position.Z(), eps)
}

func TestGroundedStaysPutAfterTicks(t *testing.T) {
	c := NewController(DefaultConfig(), flatSurface(10, 0))
	for i := 0; i < 100; i++ {
		res := c.Tick()
		assert.False(t, res.Landed, "стоя на земле не приземляются заново")
	}
	assert.Equal(t, Grounded, c.State())
	assert.InDelta(t, 0.0, c.Pose().Feet(), eps)
	assert.Zero(t, c.Pose().VelocityY)
}

func TestGravityUntilFallbackClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLayers = 10
	c := NewController(cfg, noGround)

	// Появление без данных ставит игрока на запасной пол
	assert.InDelta(t, 10.0, c.Pose().Feet(), eps)

	c.Teleport(mgl64.Vec3{0.5, -cfg.EyeHeight, 0.5})
	require.InDelta(t, 0.0, c.Pose().Feet(), eps)

	prev := 0.0
	ticks := 0
	for c.State() != Grounded || ticks == 0 {
		res := c.Tick()
		ticks++
		require.Less(t, ticks, 1000, "запасной пол должен остановить падение")
		assert.True(t, res.Fallback)

		if c.State() == Airborne {
			assert.InDelta(t, prev+cfg.Gravity, c.Pose().VelocityY, eps, "тик %d", ticks)
			prev = c.Pose().VelocityY
		}
	}

	assert.InDelta(t, 10.0, c.Pose().Feet(), eps)
	assert.Zero(t, c.Pose().VelocityY)
	assert.Greater(t, ticks, 1)
}

func TestJumpWhileGrounded(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg, flatSurface(10, 0))

	c.RequestJump()
	res := c.Tick()

	assert.True(t, res.Jumped)
	assert.Equal(t, Airborne, c.State(), "прыжок переводит в воздух в том же тике")
	assert.Equal(t, -cfg.JumpImpulse, c.Pose().VelocityY)
	assert.False(t, c.Pose().Grounded)

	// Полёт и приземление
	landed := false
	minFeet := 0.0
	for i := 0; i < 200 && !landed; i++ {
		res = c.Tick()
		minFeet = math.Min(minFeet, c.Pose().Feet())
		landed = res.Landed
	}
	assert.True(t, landed)
	assert.InDelta(t, 0.0, c.Pose().Feet(), eps)
	assert.InDelta(t, -cfg.JumpApex(), minFeet, 1e-6, "высота прыжка совпадает с расчётной")
}

func TestJumpWhileAirborneIsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	a := NewController(cfg, flatSurface(10, 0))
	b := NewController(cfg, flatSurface(10, 0))

	a.RequestJump()
	b.RequestJump()
	a.Tick()
	b.Tick()
	require.Equal(t, Airborne, a.State())

	// Повторный запрос в воздухе не должен ничего менять
	a.RequestJump()
	resA := a.Tick()
	resB := b.Tick()

	assert.False(t, resA.Jumped)
	assert.Equal(t, b.Pose().VelocityY, a.Pose().VelocityY)
	assert.Equal(t, b.State(), a.State())
	assert.InDelta(t, -cfg.JumpImpulse+cfg.Gravity, a.Pose().VelocityY, eps, "гравитация всё ещё действует")
	assert.Equal(t, resB, resA)

	// Запрос не откладывается до приземления
	for a.State() != Grounded {
		a.Tick()
	}
	a.Tick()
	assert.Equal(t, Grounded, a.State())
}

func TestHorizontalMovementFollowsYaw(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnX, cfg.SpawnZ = 50, 50

	cases := []struct {
		name            string
		yaw             float64
		forward, strafe float64
		dx, dz          float64
	}{
		{"вперёд при yaw 0", 0, 1, 0, 1, 0},
		{"вперёд при yaw 90", 90, 1, 0, 0, 1},
		{"вправо при yaw 0", 0, 0, 1, 0, 1},
		{"назад при yaw 180", 180, -1, 0, 1, 0},
		{"вправо при yaw 90", 90, 0, 1, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(cfg, flatSurface(100, 0))
			start := c.Pose().Position

			c.Rotate(tc.yaw, 0)
			c.SetHorizontalIntent(tc.forward, tc.strafe)
			c.Tick()

			pos := c.Pose().Position
			assert.InDelta(t, tc.dx*cfg.Speed, pos.X()-start.X(), eps)
			assert.InDelta(t, tc.dz*cfg.Speed, pos.Z()-start.Z(), eps)
			assert.Equal(t, Grounded, c.State())
		})
	}
}

func TestIntentIsClamped(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg, flatSurface(100, 0))
	start := c.Pose().Position

	c.SetHorizontalIntent(5, 0)
	c.Tick()
	assert.InDelta(t, cfg.Speed, c.Pose().Position.X()-start.X(), eps)
}

func TestPitchIsClamped(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg, flatSurface(1, 0))
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		c.Rotate(rng.Float64()*720-360, rng.Float64()*400-200)
		pitch := c.Pose().Pitch
		require.GreaterOrEqual(t, pitch, -cfg.MaxPitch)
		require.LessOrEqual(t, pitch, cfg.MaxPitch)
	}

	c.Rotate(0, 1000)
	assert.Equal(t, cfg.MaxPitch, c.Pose().Pitch)
	c.Rotate(0, -5000)
	assert.Equal(t, -cfg.MaxPitch, c.Pose().Pitch)
}

func TestYawIsUnbounded(t *testing.T) {
	c := NewController(DefaultConfig(), flatSurface(1, 0))
	for i := 0; i < 10; i++ {
		c.Rotate(90, 0)
	}
	assert.Equal(t, 900.0, c.Pose().Yaw)
}

// terrace — ступенчатый рельеф: поверхность колонки зависит от gx
func terrace(gx, gz int) (int, bool) {
	if gx < 0 || gz < 0 || gx >= 12 || gz >= 12 {
		return 0, false
	}
	return (gx / 3) % 3, true
}

func TestGroundedInvariantUnderRandomInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLayers = 8
	cfg.SpawnX, cfg.SpawnZ = 6, 6

	for _, seed := range []int64{1, 2, 3, 4} {
		rng := rand.New(rand.NewSource(seed))
		c := NewController(cfg, SurfaceFunc(terrace))

		for i := 0; i < 2000; i++ {
			if i%20 == 0 {
				c.SetHorizontalIntent(float64(rng.Intn(3)-1), float64(rng.Intn(3)-1))
				c.Rotate(rng.Float64()*90-45, 0)
			}
			if rng.Intn(15) == 0 {
				c.RequestJump()
			}
			res := c.Tick()

			pose := c.Pose()
			if c.State() != Grounded {
				continue
			}
			assert.Zero(t, pose.VelocityY)

			surface := float64(cfg.FallbackLayers)
			if layer, ok := terrace(res.Column[0], res.Column[1]); ok {
				surface = float64(layer)
			}
			require.InDelta(t, surface, pose.Feet(), 1e-9, "сид %d тик %d", seed, i)
		}
	}
}

func TestSetSurfaceAndSpawn(t *testing.T) {
	c := NewController(DefaultConfig(), flatSurface(4, 0))
	c.SetSurface(flatSurface(4, 2))
	c.Spawn(1, 1)

	assert.InDelta(t, 2.0, c.Pose().Feet(), eps)
	assert.Equal(t, Grounded, c.State())
}

func TestMotionStateString(t *testing.T) {
	assert.Equal(t, "grounded", Grounded.String())
	assert.Equal(t, "airborne", Airborne.String())
	assert.Equal(t, "MotionState(7)", MotionState(7).String())
}

func TestJumpApex(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 1.2, cfg.JumpApex(), 1e-6)

	cfg.Gravity = 0
	assert.Zero(t, cfg.JumpApex())
}
