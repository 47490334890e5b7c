package block

import (
	"sort"
	"strings"
)

// BlockID представляет идентификатор типа блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0 — пустота, отсутствие ключа в карте
	GrassBlockID                // 1
	DirtBlockID                 // 2
	StoneBlockID                // 3

	// Руды (начиная с 100)
	CoalOreBlockID     BlockID = 100
	IronOreBlockID     BlockID = 101
	GoldOreBlockID     BlockID = 102
	DiamondOreBlockID  BlockID = 103
	RedstoneOreBlockID BlockID = 104
	LapisOreBlockID    BlockID = 105
)

// Info описывает свойства типа блока
type Info struct {
	ID    BlockID
	Name  string
	Solid bool
	Ore   bool
}

var registry = make(map[BlockID]Info)

// Register добавляет тип блока в регистр
func Register(info Info) {
	registry[info.ID] = info
}

// Get возвращает свойства для указанного ID
func Get(id BlockID) (Info, bool) {
	info, exists := registry[id]
	return info, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// IsOre возвращает true для рудных тегов
func IsOre(id BlockID) bool {
	return registry[id].Ore
}

// IsSolid возвращает true для занятых клеток
func IsSolid(id BlockID) bool {
	return registry[id].Solid
}

// Parse находит тип блока по имени без учёта регистра ("iron_ore", "Stone")
func Parse(name string) (BlockID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, info := range registry {
		if info.Name == name {
			return id, true
		}
	}
	return AirBlockID, false
}

// String возвращает имя блока из регистра
func (id BlockID) String() string {
	if info, ok := registry[id]; ok {
		return info.Name
	}
	return "unknown"
}

// All возвращает зарегистрированные типы по возрастанию ID
func All() []Info {
	out := make([]Info, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func init() {
	Register(Info{ID: AirBlockID, Name: "air"})
	Register(Info{ID: GrassBlockID, Name: "grass", Solid: true})
	Register(Info{ID: DirtBlockID, Name: "dirt", Solid: true})
	Register(Info{ID: StoneBlockID, Name: "stone", Solid: true})

	Register(Info{ID: CoalOreBlockID, Name: "coal_ore", Solid: true, Ore: true})
	Register(Info{ID: IronOreBlockID, Name: "iron_ore", Solid: true, Ore: true})
	Register(Info{ID: GoldOreBlockID, Name: "gold_ore", Solid: true, Ore: true})
	Register(Info{ID: DiamondOreBlockID, Name: "diamond_ore", Solid: true, Ore: true})
	Register(Info{ID: RedstoneOreBlockID, Name: "redstone_ore", Solid: true, Ore: true})
	Register(Info{ID: LapisOreBlockID, Name: "lapis_ore", Solid: true, Ore: true})
}
