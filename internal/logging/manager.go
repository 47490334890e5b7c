package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Компоненты песочницы
const (
	ComponentWorld = "world"
	ComponentSim   = "sim"
)

// LoggerManager раздаёт логгеры компонентов и держит общие пороги уровней,
// заданные конфигурацией. Новые логгеры получают текущие пороги.
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
	fileLevel    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// NewLoggerManager создаёт менеджер с порогами INFO (консоль) и DEBUG (файл)
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		consoleLevel: INFO,
		fileLevel:    DEBUG,
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// Configure задаёт пороги для всех существующих и будущих логгеров
func (lm *LoggerManager) Configure(consoleLevel, fileLevel LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel, lm.fileLevel = consoleLevel, fileLevel
	for _, l := range lm.loggers {
		l.SetLevels(consoleLevel, fileLevel)
	}
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}

	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("logger %s: %w", component, err)
	}
	l.SetLevels(lm.consoleLevel, lm.fileLevel)
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger возвращает логгер; если файл открыть не удалось,
// компонент пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}

	defaultLogger.Warn("Файловый лог для %s недоступен: %v", component, err)
	lm.mu.Lock()
	defer lm.mu.Unlock()
	l = &Logger{
		component:       component,
		consoleLogger:   defaultLogger.consoleLogger,
		minConsoleLevel: lm.consoleLevel,
		minFileLevel:    ERROR + 1,
	}
	lm.loggers[component] = l
	return l
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for _, l := range lm.loggers {
		errs = append(errs, l.Close())
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированный список компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	out := make([]string, 0, len(lm.loggers))
	for c := range lm.loggers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SetLogLevel меняет пороги одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	l, ok := lm.loggers[component]
	lm.mu.Unlock()

	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}
	l.SetLevels(consoleLevel, fileLevel)
	return nil
}

// GetComponentLogger — логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger { return GetComponentLogger(ComponentWorld) }

func GetSimLogger() *Logger { return GetComponentLogger(ComponentSim) }
