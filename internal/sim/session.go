package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/input"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/metrics"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Frame — снимок состояния для слоя отображения
type Frame struct {
	Tick     uint64
	Pose     physics.Pose
	State    physics.MotionState
	Revision uint64
	// Full=true: Voxels содержит все видимые клетки и заменяет прежнюю картину;
	// иначе только клетки, изменённые после предыдущего кадра.
	Full   bool
	Voxels []world.Voxel
}

// Option настраивает Session
type Option func(*Session)

// WithLogger задаёт логгер сессии
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorldLogger задаёт логгер генерации мира
func WithWorldLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.worldLogger = l
		}
	}
}

// WithMetrics задаёт метрики сессии
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Session — контекст симуляции: мир, контроллер игрока и ввод.
// Один логический поток симуляции; методы защищены мьютексом, чтобы
// слой отображения мог опрашивать Frame из своей горутины.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	cfg     *config.Config
	ores    []world.OreVeinSpec
	seeds   *rand.Rand // источник сидов для перегенерации
	world   *world.World
	report  world.VeinReport
	ctrl    *physics.Controller
	input   *input.Mapper
	metrics *metrics.Metrics
	logger  *logging.Logger

	worldLogger *logging.Logger

	tick        uint64
	accumulator time.Duration
	framed      bool
	framedRev   uint64
}

// NewSession проверяет конфигурацию, генерирует мир, размещает руды
// и ставит игрока на поверхность. Сид 0 заменяется текущим временем.
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	ores, err := cfg.OreSpecs()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		id:      uuid.New(),
		cfg:     cfg,
		ores:    ores,
		seeds:   rand.New(rand.NewSource(seed)),
		input:   input.NewMapper(cfg.Input.Sensitivity),
		metrics: metrics.New(nil),
		logger:  logging.DefaultLogger(),

		worldLogger: logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	w, report, err := s.buildWorld(seed)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.world = w
	s.report = report
	s.ctrl = physics.NewController(cfg.Physics(), w)

	s.logger.Info("Сессия %s: мир %dx%dx%d, сид %d, руды %d блоков",
		s.id, cfg.World.Width, cfg.World.Depth, cfg.World.Layers, seed, report.Total())
	return s, nil
}

// buildWorld строит новый мир целиком, не трогая текущий
func (s *Session) buildWorld(seed int64) (*world.World, world.VeinReport, error) {
	started := time.Now()

	opts := []world.Option{world.WithLogger(s.worldLogger)}
	if s.cfg.World.DirtNoise {
		opts = append(opts, world.WithDirtSource(world.NewDirtNoise(seed, s.cfg.World.NoiseScale)))
	}
	w := world.New(seed, opts...)

	if err := w.Generate(s.cfg.World.Width, s.cfg.World.Depth, s.cfg.World.Layers); err != nil {
		return nil, world.VeinReport{}, err
	}
	report, err := w.PlaceOreVeins(s.ores)
	if err != nil {
		return nil, world.VeinReport{}, err
	}

	s.metrics.ObserveGeneration(time.Since(started), report.Placed())
	return w, report, nil
}

// ID возвращает идентификатор сессии
func (s *Session) ID() uuid.UUID { return s.id }

// Input возвращает маппер ввода; он безопасен для вызова из любой горутины
func (s *Session) Input() *input.Mapper { return s.input }

// Seed возвращает сид текущего мира
func (s *Session) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Seed()
}

// TickCount возвращает количество выполненных тиков
func (s *Session) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Pose возвращает положение игрока
func (s *Session) Pose() physics.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Pose()
}

// State возвращает режим вертикального движения игрока
func (s *Session) State() physics.MotionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

// Report возвращает итог размещения руд текущего мира
func (s *Session) Report() world.VeinReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// View вызывает fn с текущим миром под блокировкой сессии.
// Ссылку на мир нельзя сохранять после возврата fn.
func (s *Session) View(fn func(w *world.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world)
}

// Tick выполняет один шаг: ввод, затем контроллер. Ошибок не бывает.
func (s *Session) Tick() physics.TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

func (s *Session) tickLocked() physics.TickResult {
	s.input.Apply(s.ctrl)
	res := s.ctrl.Tick()
	s.tick++

	pose := s.ctrl.Pose()
	s.metrics.ObserveTick(pose.Grounded, pose.VelocityY)

	if res.Landed {
		s.logger.Trace("Тик %d: приземление в колонке %v", s.tick, res.Column)
	}
	if res.Fallback && res.Landed {
		s.logger.Debug("Тик %d: под игроком нет данных, запасной пол", s.tick)
	}
	return res
}

// Advance накапливает прошедшее время и выполняет целое число тиков
// с фиксированным шагом. Не больше MaxStepsPerRun за вызов: отставание
// сверх предела отбрасывается, чтобы медленный кадр не вызывал лавину тиков.
// Возвращает количество выполненных тиков.
func (s *Session) Advance(dt time.Duration) int {
	if dt <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.cfg.TickInterval()
	if step <= 0 {
		return 0
	}
	limit := s.cfg.Sim.MaxStepsPerRun
	s.accumulator += dt

	steps := 0
	for s.accumulator >= step && steps < limit {
		s.tickLocked()
		s.accumulator -= step
		steps++
	}
	if s.accumulator >= step {
		s.logger.Trace("Отставание %v отброшено", s.accumulator)
		s.accumulator %= step
	}
	return steps
}

// Regenerate строит новый мир со следующим сидом и заменяет им текущий.
// Мир собирается целиком до замены, поэтому частичное состояние не видно;
// при ошибке текущий мир остаётся нетронутым.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := s.seeds.Int63()
	w, report, err := s.buildWorld(seed)
	if err != nil {
		return fmt.Errorf("regenerate: %w", err)
	}

	s.world = w
	s.report = report
	s.framed = false
	s.ctrl.SetSurface(w)
	s.ctrl.Spawn(s.cfg.Player.SpawnX, s.cfg.Player.SpawnZ)
	s.metrics.ObserveRegeneration()

	s.logger.Info("Сессия %s: мир перегенерирован, сид %d, руды %d блоков", s.id, seed, report.Total())
	return nil
}

// Frame возвращает снимок для отображения. Первый кадр и кадр после
// перегенерации содержат все видимые клетки, остальные — только изменения.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := Frame{
		Tick:     s.tick,
		Pose:     s.ctrl.Pose(),
		State:    s.ctrl.State(),
		Revision: s.world.Revision(),
	}

	if !s.framed || s.framedRev != f.Revision {
		s.world.DrainChanges()
		f.Full = true
		f.Voxels = s.world.Visible()
		s.framed = true
		s.framedRev = f.Revision
		return f
	}

	f.Voxels = s.world.DrainChanges()
	return f
}

// Break удаляет блок в клетке p
func (s *Session) Break(p vec.Vec3) (block.BlockID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.world.Break(p)
	if ok {
		s.metrics.BlockBroken()
		s.logger.Trace("Блок %s удалён в %v", prev, p)
	}
	return prev, ok
}

// Place ставит блок id в пустую клетку p
func (s *Session) Place(p vec.Vec3, id block.BlockID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.world.Place(p, id) {
		return false
	}
	s.metrics.BlockPlaced()
	s.logger.Trace("Блок %s поставлен в %v", id, p)
	return true
}

// Run продвигает симуляцию по таймеру с частотой тиков, пока ctx не отменён.
// После каждого срабатывания вызывается onFrame (если задан).
func (s *Session) Run(ctx context.Context, onFrame func(Frame)) error {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Advance(now.Sub(last))
			last = now
			if onFrame != nil {
				onFrame(s.Frame())
			}
		}
	}
}
