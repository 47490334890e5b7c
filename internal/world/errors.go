package world

import "errors"

// ErrConfiguration — неверные параметры генерации (размеры, диапазоны глубин руд).
// Пустая или пропущенная жила ошибкой не считается.
var ErrConfiguration = errors.New("invalid world configuration")

// ErrNotGenerated — операция требует сгенерированного мира
var ErrNotGenerated = errors.New("world is not generated")
