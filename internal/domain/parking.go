package domain

import "time"

// ParkingSpot - парковочное место, загруженное из GeoJSON-датасета.
// Tag и Geometry неизменяемы; Reserved/ReservedBy меняются только через Reserve.
type ParkingSpot struct {
	ID         int64      `json:"id" db:"id"`
	Tag        string     `json:"tag" db:"tag"`
	Geometry   Geometry   `json:"geometry" db:"-"`
	Reserved   bool       `json:"reserved" db:"reserved"`
	ReservedBy *int64     `json:"reserved_by,omitempty" db:"reserved_by"`
	ReservedAt *time.Time `json:"reserved_at,omitempty" db:"reserved_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// NewParkingSpot создаёт свободное место
func NewParkingSpot(id int64, tag string, geometry Geometry) *ParkingSpot {
	return &ParkingSpot{
		ID:       id,
		Tag:      tag,
		Geometry: geometry,
	}
}

// Reserve переводит место из Free в Reserved. Переход однократный:
// для уже занятого места возвращается ErrAlreadyReserved без изменений.
func (p *ParkingSpot) Reserve(userID int64, at time.Time) error {
	if p.Reserved {
		return ErrAlreadyReserved
	}
	p.Reserved = true
	p.ReservedBy = &userID
	p.ReservedAt = &at
	return nil
}

// IsReservedBy проверяет, забронировано ли место указанным пользователем
func (p *ParkingSpot) IsReservedBy(userID int64) bool {
	return p.Reserved && p.ReservedBy != nil && *p.ReservedBy == userID
}

// Consistent проверяет инвариант reserved == (reservedBy != nil)
func (p *ParkingSpot) Consistent() bool {
	return p.Reserved == (p.ReservedBy != nil)
}
