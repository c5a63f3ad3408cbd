package entity

// Occupant — идентификатор игрока, занимающего слот. Пустое значение Vacant
// означает свободный слот; строковых проверок "занято/свободно" по содержимому
// больше нигде нет.
type Occupant string

const Vacant Occupant = ""

func (o Occupant) IsVacant() bool {
	return o == Vacant
}

// Seat — пара "название слота + занявший его игрок" для отображения.
type Seat struct {
	Name     string   `json:"name"`
	Occupant Occupant `json:"occupant,omitempty"`
}

// SlotSet — упорядоченный набор именованных слотов одного тикета.
// Чистые данные без собственной блокировки: сериализацию обеспечивает Ticket.
// Инварианты: occupancy содержит запись для каждого имени из seatNames и только
// для них; один игрок занимает не более одного слота.
type SlotSet struct {
	seatNames []string
	occupancy map[string]Occupant
}

// NewSlotSet создает набор слотов, все слоты свободны. Имена слотов фиксируются
// на все время жизни тикета и сравниваются как точные строки.
func NewSlotSet(seatNames []string) (*SlotSet, error) {
	if len(seatNames) == 0 {
		return nil, ErrInvalidSlotConfig
	}

	occupancy := make(map[string]Occupant, len(seatNames))
	names := make([]string, 0, len(seatNames))
	for _, name := range seatNames {
		if _, exists := occupancy[name]; exists {
			return nil, ErrInvalidSlotConfig
		}
		occupancy[name] = Vacant
		names = append(names, name)
	}

	return &SlotSet{seatNames: names, occupancy: occupancy}, nil
}

// Occupy сажает игрока в указанный слот. Слот должен быть свободен, а игрок
// не должен занимать другой слот (перемещение делается на уровне Ticket).
func (s *SlotSet) Occupy(seat string, who Occupant) error {
	current, exists := s.occupancy[seat]
	if !exists {
		return ErrSeatNotFound
	}
	if !current.IsVacant() {
		return ErrSeatOccupied
	}
	if taken, ok := s.SeatOf(who); ok && taken != seat {
		return ErrAlreadySeated
	}

	s.occupancy[seat] = who
	return nil
}

// Vacate освобождает слот. Освобождение уже свободного слота не является
// ошибкой на этом уровне.
func (s *SlotSet) Vacate(seat string) error {
	if _, exists := s.occupancy[seat]; !exists {
		return ErrSeatNotFound
	}
	s.occupancy[seat] = Vacant
	return nil
}

// SeatOf возвращает слот, занятый игроком.
func (s *SlotSet) SeatOf(who Occupant) (string, bool) {
	if who.IsVacant() {
		return "", false
	}
	for seat, occupant := range s.occupancy {
		if occupant == who {
			return seat, true
		}
	}
	return "", false
}

// OccupantOf возвращает игрока в указанном слоте.
func (s *SlotSet) OccupantOf(seat string) (Occupant, error) {
	occupant, exists := s.occupancy[seat]
	if !exists {
		return Vacant, ErrSeatNotFound
	}
	return occupant, nil
}

// IsFull — true, когда свободных слотов не осталось.
func (s *SlotSet) IsFull() bool {
	for _, occupant := range s.occupancy {
		if occupant.IsVacant() {
			return false
		}
	}
	return true
}

// Occupants возвращает занявших слоты игроков в порядке объявления слотов,
// свободные слоты пропускаются.
func (s *SlotSet) Occupants() []Occupant {
	occupants := make([]Occupant, 0, len(s.seatNames))
	for _, name := range s.seatNames {
		if occupant := s.occupancy[name]; !occupant.IsVacant() {
			occupants = append(occupants, occupant)
		}
	}
	return occupants
}

// Snapshot возвращает все слоты с их состоянием в порядке объявления.
func (s *SlotSet) Snapshot() []Seat {
	seats := make([]Seat, 0, len(s.seatNames))
	for _, name := range s.seatNames {
		seats = append(seats, Seat{Name: name, Occupant: s.occupancy[name]})
	}
	return seats
}

// SeatNames возвращает копию списка имен слотов.
func (s *SlotSet) SeatNames() []string {
	names := make([]string, len(s.seatNames))
	copy(names, s.seatNames)
	return names
}

func (s *SlotSet) Len() int {
	return len(s.seatNames)
}
