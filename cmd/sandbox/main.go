package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/metrics"
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $SANDBOX_CONFIG)")
	ticks := flag.Int("ticks", 0, "сколько тиков выполнить; 0 — до сигнала завершения")
	walk := flag.Bool("walk", false, "сценарий прогулки: ходьба, повороты и прыжки")
	regenerate := flag.Bool("regenerate", false, "перегенерировать мир перед запуском")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.LogDir = cfg.Log.Dir
	if err := logging.InitDefaultLogger("sandbox"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.DefaultLogger().SetLevels(level, logging.DEBUG)
	logging.GetLoggerManager().Configure(level, logging.DEBUG)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, reg)
	}

	session, err := sim.NewSession(cfg,
		sim.WithLogger(logging.GetSimLogger()),
		sim.WithWorldLogger(logging.GetWorldLogger()),
		sim.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		logging.Error("❌ Ошибка создания сессии: %v", err)
		os.Exit(1)
	}
	if *regenerate {
		if err := session.Regenerate(); err != nil {
			logging.Error("❌ Ошибка перегенерации мира: %v", err)
			os.Exit(1)
		}
	}
	printWorldStats(session)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *walk {
		startWalk(session)
	}

	started := time.Now()
	if *ticks > 0 {
		runTicks(ctx, session, *ticks, *walk)
	} else {
		logging.Info("▶️  Симуляция запущена (%d тиков/с), Ctrl+C для выхода", cfg.Sim.TickRate)
		var frames int
		_ = session.Run(ctx, func(f sim.Frame) {
			frames++
			if *walk {
				steerWalk(session, f.Tick)
			}
			if f.Tick > 0 && f.Tick%uint64(cfg.Sim.TickRate*5) == 0 {
				logging.Debug("Тик %d: %s, ноги %.2f", f.Tick, f.State, f.Pose.Feet())
			}
		})
		logging.Debug("Кадров отдано: %d", frames)
	}

	pose := session.Pose()
	logging.Info("⏹  Выполнено %d тиков за %v", session.TickCount(), time.Since(started).Round(time.Millisecond))
	logging.Info("   Игрок: (%.2f, %.2f, %.2f), yaw %.1f, pitch %.1f, %s",
		pose.Position.X(), pose.Position.Y(), pose.Position.Z(), pose.Yaw, pose.Pitch, session.State())
}

// runTicks выполняет n тиков без ожидания таймера
func runTicks(ctx context.Context, s *sim.Session, n int, walk bool) {
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			logging.Warn("Прервано на тике %d", i)
			return
		}
		if walk {
			steerWalk(s, uint64(i))
		}
		s.Tick()
	}
}

func startWalk(s *sim.Session) {
	s.Input().KeyDown("w")
}

// steerWalk поворачивает игрока каждые две секунды и прыгает каждую секунду
func steerWalk(s *sim.Session, tick uint64) {
	in := s.Input()
	if tick%120 == 0 {
		_ = in.PointerMove(300, 0)
	}
	if tick%60 == 0 {
		in.KeyDown("space")
	} else {
		in.KeyUp("space")
	}
}

func printWorldStats(s *sim.Session) {
	s.View(func(w *world.World) {
		width, depth, layers := w.Dimensions()
		logging.Info("🌍 Мир %dx%dx%d, сид %d, сессия %s", width, depth, layers, w.Seed(), s.ID())

		counts := w.Counts()
		ids := make([]block.BlockID, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			logging.Info("   %-12s %d", id, counts[id])
		}
		logging.Info("   видимых клеток: %d", len(w.Visible()))
	})

	for _, res := range s.Report().Results {
		if res.Skipped {
			logging.Info("   ⛏  %-12s пропущена (глубина мира мала)", res.Ore)
			continue
		}
		logging.Info("   ⛏  %-12s жил %d, блоков %d/%d", res.Ore, res.Veins, res.Placed, res.Requested)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
	}
}
