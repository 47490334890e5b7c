package input

import (
	"errors"
	"math"
	"strings"
	"sync"
)

// DefaultSensitivity — градусов поворота на единицу смещения указателя
const DefaultSensitivity = 0.1

// ErrNonFinite — смещение указателя NaN или ±Inf
var ErrNonFinite = errors.New("non-finite pointer delta")

// Action — игровое действие, к которому привязана клавиша
type Action uint8

const (
	ActionNone Action = iota
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
	ActionJump
)

// String возвращает имя действия
func (a Action) String() string {
	switch a {
	case ActionForward:
		return "forward"
	case ActionBack:
		return "back"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionJump:
		return "jump"
	default:
		return "none"
	}
}

var keyBindings = map[string]Action{
	"w":          ActionForward,
	"arrowup":    ActionForward,
	"s":          ActionBack,
	"arrowdown":  ActionBack,
	"a":          ActionLeft,
	"arrowleft":  ActionLeft,
	"d":          ActionRight,
	"arrowright": ActionRight,
	" ":          ActionJump,
	"space":      ActionJump,
}

// ActionFor возвращает действие для клавиши (без учёта регистра)
func ActionFor(key string) Action {
	if key != " " {
		key = strings.ToLower(strings.TrimSpace(key))
	}
	return keyBindings[key]
}

// Target принимает намерения игрока; *physics.Controller подходит
type Target interface {
	SetHorizontalIntent(forward, strafe float64)
	Rotate(deltaYaw, deltaPitch float64)
	RequestJump()
}

// Mapper превращает события клавиатуры и указателя в намерения.
// События могут приходить из другой горутины, поэтому состояние под мьютексом.
type Mapper struct {
	mu          sync.Mutex
	sensitivity float64
	held        map[Action]bool
	yaw         float64
	pitch       float64
}

// NewMapper создаёт маппер; неположительная чувствительность заменяется на DefaultSensitivity
func NewMapper(sensitivity float64) *Mapper {
	if sensitivity <= 0 || math.IsNaN(sensitivity) || math.IsInf(sensitivity, 0) {
		sensitivity = DefaultSensitivity
	}
	return &Mapper{
		sensitivity: sensitivity,
		held:        make(map[Action]bool),
	}
}

// Sensitivity возвращает множитель смещения указателя
func (m *Mapper) Sensitivity() float64 { return m.sensitivity }

// KeyDown отмечает клавишу нажатой. Неизвестные клавиши игнорируются.
func (m *Mapper) KeyDown(key string) {
	m.setKey(key, true)
}

// KeyUp отмечает клавишу отпущенной
func (m *Mapper) KeyUp(key string) {
	m.setKey(key, false)
}

func (m *Mapper) setKey(key string, down bool) {
	action := ActionFor(key)
	if action == ActionNone {
		return
	}
	m.mu.Lock()
	m.held[action] = down
	m.mu.Unlock()
}

// Held возвращает true, если действие удерживается
func (m *Mapper) Held(a Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[a]
}

// Пределы накопленного поворота: рыскание берётся по модулю полного оборота,
// тангаж за пределами ±maxPitchDelta всё равно упрётся в ограничение контроллера
const (
	fullTurn      = 360.0
	maxPitchDelta = 180.0
)

// PointerMove накапливает смещение указателя до следующего Apply.
// Движение вверх (dy < 0) поднимает взгляд. Смещение, которое после
// умножения на чувствительность перестаёт быть конечным, отбрасывается.
func (m *Mapper) PointerMove(dx, dy float64) error {
	dyaw, dpitch := dx*m.sensitivity, -dy*m.sensitivity
	if !finite(dyaw) || !finite(dpitch) {
		return ErrNonFinite
	}
	m.mu.Lock()
	m.yaw = math.Mod(m.yaw+dyaw, fullTurn)
	m.pitch = math.Max(-maxPitchDelta, math.Min(maxPitchDelta, m.pitch+dpitch))
	m.mu.Unlock()
	return nil
}

// Intent возвращает текущее намерение: forward = w-s, strafe = d-a
func (m *Mapper) Intent() (forward, strafe float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intentLocked()
}

func (m *Mapper) intentLocked() (forward, strafe float64) {
	forward = axis(m.held[ActionForward], m.held[ActionBack])
	strafe = axis(m.held[ActionRight], m.held[ActionLeft])
	return forward, strafe
}

// Apply передаёт намерение в target, сбрасывает накопленный поворот
// и запрашивает прыжок, пока удерживается пробел
func (m *Mapper) Apply(t Target) {
	m.mu.Lock()
	forward, strafe := m.intentLocked()
	yaw, pitch := m.yaw, m.pitch
	m.yaw, m.pitch = 0, 0
	jump := m.held[ActionJump]
	m.mu.Unlock()

	t.SetHorizontalIntent(forward, strafe)
	if yaw != 0 || pitch != 0 {
		t.Rotate(yaw, pitch)
	}
	if jump {
		t.RequestJump()
	}
}

// Reset отпускает все клавиши и сбрасывает накопленный поворот
func (m *Mapper) Reset() {
	m.mu.Lock()
	m.held = make(map[Action]bool)
	m.yaw, m.pitch = 0, 0
	m.mu.Unlock()
}

func axis(pos, neg bool) float64 {
	v := 0.0
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
