package entity

type OfferKind string

const (
	OfferArbitration OfferKind = "arbitration"
	OfferCascade     OfferKind = "cascade"
)

// ArbitrationMap — карта текущей ротации Арбитража.
type ArbitrationMap struct {
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Mission string `json:"mission"`
	Faction string `json:"faction"`
	Tileset string `json:"tileset"`
}

// Offer описывает, на что собирается пати. Ядро тикетов содержимое не
// интерпретирует — оно прокидывается в рендеринг и события как есть.
type Offer struct {
	Kind OfferKind       `json:"kind"`
	Map  *ArbitrationMap `json:"map,omitempty"` // nil для Каскада
}

// Слоты Арбитража: фиксированные роли фреймов.
var ArbitrationSlots = []string{
	"Сарина (Пребаф)",
	"Сарина (DPS)",
	"Вольт / Хрома",
	"Висп",
}

// Слоты Каскада: безымянные места.
var CascadeSlots = []string{"Слот 1", "Слот 2", "Слот 3", "Слот 4"}

const (
	TierS = "S-ТИР"
	TierA = "A-ТИР"
	TierB = "B-ТИР"
)

// MapTiers — статический каталог карт Арбитража по тирам.
var MapTiers = map[string][]ArbitrationMap{
	TierS: {
		{Name: "Casta", Faction: "Гринир", Mission: "Оборона", Tileset: "Grineer Asteroid"},
		{Name: "Cinxia", Faction: "Гринир", Mission: "Перехват", Tileset: "Grineer Galleon"},
		{Name: "Seimeni", Faction: "Зараженные", Mission: "Оборона", Tileset: "Infested Ship"},
	},
	TierA: {
		{Name: "Hydron", Faction: "Гринир", Mission: "Оборона", Tileset: "Grineer Galleon"},
		{Name: "Helenе", Faction: "Гринир", Mission: "Оборона", Tileset: "Grineer Asteroid"},
		{Name: "Sechura", Faction: "Зараженные", Mission: "Оборона", Tileset: "Infested Ship"},
		{Name: "Odin", Faction: "Гринир", Mission: "Перехват", Tileset: "Grineer Shipyard"},
	},
	TierB: {
		{Name: "Hyf", Faction: "Зараженные", Mission: "Оборона", Tileset: "Infested Ship"},
		{Name: "Ose", Faction: "Корпус", Mission: "Перехват", Tileset: "Corpus Ice Planet"},
		{Name: "Outer Terminus", Faction: "Корпус", Mission: "Оборона", Tileset: "Corpus Gas City"},
	},
}

// FindMap ищет карту по тиру и точному имени.
func FindMap(tier, name string) (*ArbitrationMap, error) {
	for _, m := range MapTiers[tier] {
		if m.Name == name {
			found := m
			found.Tier = tier
			return &found, nil
		}
	}
	return nil, ErrUnknownMap
}

// KnownMapName проверяет, есть ли карта с таким именем в каком-либо тире.
func KnownMapName(name string) bool {
	for _, maps := range MapTiers {
		for _, m := range maps {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

// NewArbitrationOffer собирает оффер Арбитража по тиру и имени карты.
func NewArbitrationOffer(tier, name string) (Offer, error) {
	m, err := FindMap(tier, name)
	if err != nil {
		return Offer{}, err
	}
	return Offer{Kind: OfferArbitration, Map: m}, nil
}

// NewCascadeOffer собирает фиксированный оффер Каскада.
func NewCascadeOffer() Offer {
	return Offer{Kind: OfferCascade}
}

// SlotNames возвращает раскладку слотов для оффера.
func (o Offer) SlotNames() []string {
	switch o.Kind {
	case OfferArbitration:
		return ArbitrationSlots
	default:
		return CascadeSlots
	}
}
