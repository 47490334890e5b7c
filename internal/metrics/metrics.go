package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-sandbox/internal/world/block"
)

const namespace = "sandbox"

// Metrics инкапсулирует Prometheus-метрики симуляции.
// Регистр передаётся снаружи, чтобы тесты и несколько сессий не делили глобальный.
type Metrics struct {
	ticks         prometheus.Counter
	generation    prometheus.Histogram
	orePlaced     *prometheus.CounterVec
	blocksBroken  prometheus.Counter
	blocksPlaced  prometheus.Counter
	grounded      prometheus.Gauge
	verticalSpeed prometheus.Gauge
	regenerations prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg (nil — без регистрации)
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Общее число выполненных тиков симуляции.",
		}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "world_generation_seconds",
			Help:      "Длительность генерации ландшафта и руд.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		orePlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ore_cells_placed_total",
			Help:      "Клеток камня, перекрашенных в руду.",
		}, []string{"ore"}),
		blocksBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_broken_total",
			Help:      "Удалённых игроком блоков.",
		}),
		blocksPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_placed_total",
			Help:      "Поставленных игроком блоков.",
		}),
		grounded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_grounded",
			Help:      "1, если игрок стоит на поверхности.",
		}),
		verticalSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_vertical_velocity",
			Help:      "Вертикальная скорость игрока за тик (+ вниз).",
		}),
		regenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "world_regenerations_total",
			Help:      "Число перестроек мира.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ticks, m.generation, m.orePlaced, m.blocksBroken,
		m.blocksPlaced, m.grounded, m.verticalSpeed, m.regenerations,
	}
}

// ObserveTick фиксирует тик и состояние игрока после него
func (m *Metrics) ObserveTick(grounded bool, velocityY float64) {
	m.ticks.Inc()
	if grounded {
		m.grounded.Set(1)
	} else {
		m.grounded.Set(0)
	}
	m.verticalSpeed.Set(velocityY)
}

// ObserveGeneration фиксирует длительность генерации и размещённые руды
func (m *Metrics) ObserveGeneration(d time.Duration, placed map[block.BlockID]int) {
	m.generation.Observe(d.Seconds())
	for ore, n := range placed {
		m.orePlaced.WithLabelValues(ore.String()).Add(float64(n))
	}
}

// ObserveRegeneration фиксирует перестройку мира
func (m *Metrics) ObserveRegeneration() {
	m.regenerations.Inc()
}

// BlockBroken увеличивает счётчик удалённых блоков
func (m *Metrics) BlockBroken() { m.blocksBroken.Inc() }

// BlockPlaced увеличивает счётчик поставленных блоков
func (m *Metrics) BlockPlaced() { m.blocksPlaced.Inc() }
