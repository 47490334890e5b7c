package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/metrics"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Seed = 1
	cfg.World.Width = 8
	cfg.World.Depth = 8
	cfg.World.Layers = 32
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionSpawnsGrounded(t *testing.T) {
	s := newTestSession(t, testConfig())

	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.Equal(t, int64(1), s.Seed())
	assert.Equal(t, physics.Grounded, s.State())
	assert.InDelta(t, 0.0, s.Pose().Feet(), 1e-9)
	assert.Zero(t, s.Pose().VelocityY)
	assert.Positive(t, s.Report().Total(), "руды размещены")
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.World.Width = 0

	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, world.ErrConfiguration)
}

func TestNewSessionNilConfig(t *testing.T) {
	s := newTestSession(t, nil)
	assert.NotZero(t, s.Seed(), "сид 0 заменяется временем")
}

func TestSameSeedSameWorld(t *testing.T) {
	a := newTestSession(t, testConfig())
	b := newTestSession(t, testConfig())

	assert.Equal(t, a.Report(), b.Report())

	var ca, cb map[block.BlockID]int
	a.View(func(w *world.World) { ca = w.Counts() })
	b.View(func(w *world.World) { cb = w.Counts() })
	assert.Equal(t, ca, cb)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestTickKeepsGroundedPlayerStill(t *testing.T) {
	s := newTestSession(t, testConfig())
	for i := 0; i < 120; i++ {
		s.Tick()
	}
	assert.Equal(t, uint64(120), s.TickCount())
	assert.Equal(t, physics.Grounded, s.State())
	assert.InDelta(t, 0.0, s.Pose().Feet(), 1e-9)
}

func TestInputDrivesPlayer(t *testing.T) {
	cfg := testConfig()
	cfg.Player.SpawnX, cfg.Player.SpawnZ = 2, 2
	s := newTestSession(t, cfg)
	start := s.Pose().Position

	s.Input().KeyDown("w")
	s.Tick()
	assert.InDelta(t, cfg.Player.Speed, s.Pose().Position.X()-start.X(), 1e-9)

	s.Input().KeyUp("w")
	s.Input().KeyDown(" ")
	res := s.Tick()
	assert.True(t, res.Jumped)
	assert.Equal(t, physics.Airborne, s.State())
}

func TestWalkingOffTheEdgeLandsOnFallbackFloor(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)

	require.NoError(t, s.Input().PointerMove(1800, 0)) // yaw 180: «вперёд» к -X
	s.Input().KeyDown("w")

	landed := false
	for i := 0; i < 2000 && !landed; i++ {
		res := s.Tick()
		landed = res.Landed && res.Fallback
	}
	require.True(t, landed)
	assert.InDelta(t, float64(cfg.World.Layers), s.Pose().Feet(), 1e-9)
	assert.Less(t, s.Pose().Position.X(), 0.0)
}

func TestBreakUnderPlayerFalls(t *testing.T) {
	s := newTestSession(t, testConfig())

	prev, ok := s.Break(vec.Vec3{X: 0, Y: 0, Z: 0})
	require.True(t, ok)
	assert.Equal(t, block.GrassBlockID, prev)

	res := s.Tick()
	assert.Equal(t, physics.Airborne, s.State())
	assert.False(t, res.Landed)

	for i := 0; i < 100 && s.State() != physics.Grounded; i++ {
		s.Tick()
	}
	assert.Equal(t, physics.Grounded, s.State())
	assert.InDelta(t, 1.0, s.Pose().Feet(), 1e-9, "ноги на слое земли")

	_, ok = s.Break(vec.Vec3{X: 0, Y: 0, Z: 0})
	assert.False(t, ok, "пустую клетку не сломать")
}

func TestAdvanceFixedStep(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)
	step := cfg.TickInterval()

	assert.Zero(t, s.Advance(0))
	assert.Zero(t, s.Advance(-time.Second))
	assert.Equal(t, 3, s.Advance(3*step))

	assert.Zero(t, s.Advance(step/2))
	assert.Equal(t, 1, s.Advance(step/2))

	// Длинный кадр ограничен пределом шагов, отставание отбрасывается
	assert.Equal(t, cfg.Sim.MaxStepsPerRun, s.Advance(10*time.Second))
	assert.Equal(t, uint64(3+1+cfg.Sim.MaxStepsPerRun), s.TickCount())
	assert.LessOrEqual(t, s.Advance(step-1), 1, "после отбрасывания остаётся меньше одного шага")
}

func TestFrameDeltas(t *testing.T) {
	s := newTestSession(t, testConfig())

	first := s.Frame()
	require.True(t, first.Full)
	var visible int
	s.View(func(w *world.World) { visible = len(w.Visible()) })
	assert.Len(t, first.Voxels, visible)

	empty := s.Frame()
	assert.False(t, empty.Full)
	assert.Empty(t, empty.Voxels)

	p := vec.Vec3{X: 3, Y: 0, Z: 3}
	_, ok := s.Break(p)
	require.True(t, ok)

	delta := s.Frame()
	assert.False(t, delta.Full)
	require.NotEmpty(t, delta.Voxels)
	assert.Len(t, delta.Voxels, 6, "удалённая клетка и пять занятых соседей")

	found := false
	for _, v := range delta.Voxels {
		if v.Pos == p {
			found = true
			assert.Equal(t, block.AirBlockID, v.ID)
			assert.Zero(t, v.Faces)
		}
	}
	assert.True(t, found)

	assert.True(t, s.Place(p, block.StoneBlockID))
	assert.False(t, s.Place(p, block.StoneBlockID), "клетка уже занята")
	assert.Len(t, s.Frame().Voxels, 6, "клетка и пять занятых соседей")
}

func TestRegenerate(t *testing.T) {
	s := newTestSession(t, testConfig())
	s.Frame()

	s.Input().KeyDown("w")
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	s.Input().KeyUp("w")
	moved := s.Pose().Position.X()

	oldSeed := s.Seed()
	require.NoError(t, s.Regenerate())

	assert.NotEqual(t, oldSeed, s.Seed())
	assert.Equal(t, physics.Grounded, s.State())
	assert.Less(t, s.Pose().Position.X(), moved, "игрок возвращён в точку появления")
	assert.InDelta(t, 0.5, s.Pose().Position.X(), 1e-9)

	f := s.Frame()
	assert.True(t, f.Full, "после перегенерации кадр полный")
}

func TestMetricsWiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestSession(t, testConfig(), WithMetrics(metrics.New(reg)))

	s.Tick()
	s.Tick()
	_, ok := s.Break(vec.Vec3{X: 1, Y: 0, Z: 1})
	require.True(t, ok)

	expected := `
# HELP sandbox_ticks_total Общее число выполненных тиков симуляции.
# TYPE sandbox_ticks_total counter
sandbox_ticks_total 2
# HELP sandbox_blocks_broken_total Удалённых игроком блоков.
# TYPE sandbox_blocks_broken_total counter
sandbox_blocks_broken_total 1
# HELP sandbox_player_grounded 1, если игрок стоит на поверхности.
# TYPE sandbox_player_grounded gauge
sandbox_player_grounded 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"sandbox_ticks_total", "sandbox_blocks_broken_total", "sandbox_player_grounded"))

	count, err := testutil.GatherAndCount(reg, "sandbox_ore_cells_placed_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.TickRate = 200
	s := newTestSession(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	frames := 0
	err := s.Run(ctx, func(f Frame) {
		frames++
		if frames == 1 {
			assert.True(t, f.Full)
		}
	})
	require.NoError(t, err)
	assert.Positive(t, frames)
	assert.Positive(t, s.TickCount())
}

func TestSessionLogs(t *testing.T) {
	var simOut, worldOut bytes.Buffer
	s := newTestSession(t, testConfig(),
		WithLogger(logging.NewWriterLogger("sim", &simOut, logging.INFO)),
		WithWorldLogger(logging.NewWriterLogger("world", &worldOut, logging.DEBUG)),
	)
	require.NoError(t, s.Regenerate())

	assert.Contains(t, simOut.String(), "[INFO] [sim] Сессия "+s.ID().String())
	assert.Contains(t, simOut.String(), "перегенерирован")
	assert.Contains(t, worldOut.String(), "[DEBUG] [world] Ландшафт 8x8x32")
}

func TestNewSessionRejectsHugeTickRate(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.TickRate = 2_000_000_000

	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, world.ErrConfiguration)
}

func TestAdvanceAtMaxTickRate(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.TickRate = config.MaxTickRate
	s := newTestSession(t, cfg)

	assert.NotPanics(t, func() {
		assert.Equal(t, 1, s.Advance(time.Millisecond))
		assert.Equal(t, cfg.Sim.MaxStepsPerRun, s.Advance(time.Second))
	})
}
