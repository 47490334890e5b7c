package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-sandbox/internal/input"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Переменные окружения
const (
	EnvConfigPath  = "SANDBOX_CONFIG"
	EnvSeed        = "SANDBOX_SEED"
	EnvMetricsAddr = "SANDBOX_METRICS_ADDR"
)

// MaxTickRate — верхний предел частоты тиков; выше шаг симуляции
// становится слишком мелким для time.Duration
const MaxTickRate = 1000

// Config корневая структура конфигурации песочницы
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Ores    []OreConfig   `yaml:"ores"`
	Player  PlayerConfig  `yaml:"player"`
	Input   InputConfig   `yaml:"input"`
	Sim     SimConfig     `yaml:"sim"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type WorldConfig struct {
	Seed       int64   `yaml:"seed"` // 0 — сид от текущего времени
	Width      int     `yaml:"width"`
	Depth      int     `yaml:"depth"`
	Layers     int     `yaml:"layers"`
	DirtNoise  bool    `yaml:"dirt_noise"`  // толщина земли по шуму Перлина вместо равновероятной
	NoiseScale float64 `yaml:"noise_scale"` // масштаб шума для dirt_noise
}

// OreConfig — одна строка таблицы руд; Ore задаётся именем блока ("coal_ore")
type OreConfig struct {
	Ore      string `yaml:"ore"`
	MinDepth int    `yaml:"min_depth"`
	MaxDepth int    `yaml:"max_depth"`
	Veins    int    `yaml:"veins"`
	Size     int    `yaml:"size"`
}

type PlayerConfig struct {
	Speed       float64 `yaml:"speed"`
	Gravity     float64 `yaml:"gravity"`
	JumpImpulse float64 `yaml:"jump_impulse"`
	EyeHeight   float64 `yaml:"eye_height"`
	MaxPitch    float64 `yaml:"max_pitch"`
	BlockSize   float64 `yaml:"block_size"`
	SpawnX      int     `yaml:"spawn_x"`
	SpawnZ      int     `yaml:"spawn_z"`
}

type InputConfig struct {
	Sensitivity float64 `yaml:"sensitivity"`
}

type SimConfig struct {
	TickRate       int `yaml:"tick_rate"`         // тиков в секунду
	MaxStepsPerRun int `yaml:"max_steps_per_run"` // предел шагов за один Advance
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // пусто — только консоль
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // например ":2112"; пусто — без HTTP-эндпоинта
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	pc := physics.DefaultConfig()
	cfg := &Config{
		World: WorldConfig{
			Width:      16,
			Depth:      16,
			Layers:     64,
			NoiseScale: 0.1,
		},
		Player: PlayerConfig{
			Speed:       pc.Speed,
			Gravity:     pc.Gravity,
			JumpImpulse: pc.JumpImpulse,
			EyeHeight:   pc.EyeHeight,
			MaxPitch:    pc.MaxPitch,
			BlockSize:   pc.BlockSize,
		},
		Input: InputConfig{Sensitivity: input.DefaultSensitivity},
		Sim:   SimConfig{TickRate: 60, MaxStepsPerRun: 5},
		Log:   LogConfig{Level: "info"},
	}
	for _, spec := range world.DefaultOreVeins {
		cfg.Ores = append(cfg.Ores, OreConfig{
			Ore:      spec.Ore.String(),
			MinDepth: spec.MinDepth,
			MaxDepth: spec.MaxDepth,
			Veins:    spec.Veins,
			Size:     spec.Size,
		})
	}
	return cfg
}

// Load читает YAML файл поверх значений по умолчанию.
// Если path == "", путь берётся из SANDBOX_CONFIG; если и он пуст — возвращаются дефолты.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.World.Seed = getSeedWithEnvFallback(cfg.World.Seed, EnvSeed)
	cfg.Metrics.Addr = getStringWithEnvFallback(cfg.Metrics.Addr, EnvMetricsAddr, "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getSeedWithEnvFallback возвращает сид с приоритетом: config -> env -> 0
func getSeedWithEnvFallback(configSeed int64, envVar string) int64 {
	if configSeed != 0 {
		return configSeed
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 0
}

// getStringWithEnvFallback возвращает строку с приоритетом: config -> env -> default
func getStringWithEnvFallback(configVal, envVar, def string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// Validate проверяет конфигурацию. Все ошибки оборачивают world.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error

	if err := world.ValidateDimensions(c.World.Width, c.World.Depth, c.World.Layers); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.OreSpecs(); err != nil {
		errs = append(errs, err)
	}

	p := c.Player
	for name, v := range map[string]float64{
		"speed":        p.Speed,
		"gravity":      p.Gravity,
		"jump_impulse": p.JumpImpulse,
		"eye_height":   p.EyeHeight,
		"max_pitch":    p.MaxPitch,
		"block_size":   p.BlockSize,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%w: player.%s = %v", world.ErrConfiguration, name, v))
		}
	}
	if p.BlockSize == 0 {
		errs = append(errs, fmt.Errorf("%w: player.block_size must be positive", world.ErrConfiguration))
	}
	if p.MaxPitch >= 90 {
		errs = append(errs, fmt.Errorf("%w: player.max_pitch %v must be below 90", world.ErrConfiguration, p.MaxPitch))
	}
	if p.SpawnX < 0 || p.SpawnX >= c.World.Width || p.SpawnZ < 0 || p.SpawnZ >= c.World.Depth {
		errs = append(errs, fmt.Errorf("%w: spawn (%d,%d) outside world", world.ErrConfiguration, p.SpawnX, p.SpawnZ))
	}

	if c.Sim.TickRate <= 0 || c.Sim.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("%w: sim.tick_rate %d outside [1, %d]",
			world.ErrConfiguration, c.Sim.TickRate, MaxTickRate))
	}
	if c.Sim.MaxStepsPerRun <= 0 {
		errs = append(errs, fmt.Errorf("%w: sim.max_steps_per_run must be positive", world.ErrConfiguration))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", world.ErrConfiguration, err))
	}

	return errors.Join(errs...)
}

// OreSpecs переводит таблицу руд в спецификации жил
func (c *Config) OreSpecs() ([]world.OreVeinSpec, error) {
	specs := make([]world.OreVeinSpec, 0, len(c.Ores))
	for i, o := range c.Ores {
		id, ok := block.Parse(o.Ore)
		if !ok {
			return nil, fmt.Errorf("%w: ores[%d]: unknown block %q", world.ErrConfiguration, i, o.Ore)
		}
		spec := world.OreVeinSpec{Ore: id, MinDepth: o.MinDepth, MaxDepth: o.MaxDepth, Veins: o.Veins, Size: o.Size}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("ores[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Physics возвращает настройки контроллера игрока.
// Запасной пол совпадает с глубиной мира.
func (c *Config) Physics() physics.Config {
	return physics.Config{
		Speed:          c.Player.Speed,
		Gravity:        c.Player.Gravity,
		JumpImpulse:    c.Player.JumpImpulse,
		EyeHeight:      c.Player.EyeHeight,
		MaxPitch:       c.Player.MaxPitch,
		BlockSize:      c.Player.BlockSize,
		FallbackLayers: c.World.Layers,
		SpawnX:         c.Player.SpawnX,
		SpawnZ:         c.Player.SpawnZ,
	}
}

// TickInterval возвращает длительность одного тика
func (c *Config) TickInterval() time.Duration {
	if c.Sim.TickRate <= 0 || c.Sim.TickRate > MaxTickRate {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Sim.TickRate)
}
