package dto

import (
	"encoding/json"

	"github.com/parking-finder/internal/domain"
)

// ParkingSpotResponse - представление места в API.
// Location - GeoJSON геометрия, User - ID пользователя, занявшего место.
type ParkingSpotResponse struct {
	ID       int64           `json:"id"`
	Tag      string          `json:"tag"`
	Location json.RawMessage `json:"location" swaggertype:"object"`
	Reserved bool            `json:"reserved"`
	User     *int64          `json:"user"`
}

// ParkingListResponse - страница мест
type ParkingListResponse struct {
	Spots []ParkingSpotResponse `json:"spots"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// TokenResponse - токен доступа
type TokenResponse struct {
	Token string `json:"token"`
}

// ImportResult - результат загрузки датасета
type ImportResult struct {
	Count int `json:"count"`
}

// ConvertParkingSpot конвертирует доменную модель в DTO
func ConvertParkingSpot(spot *domain.ParkingSpot) ParkingSpotResponse {
	location, err := json.Marshal(spot.Geometry)
	if err != nil {
		location = json.RawMessage("null")
	}
	return ParkingSpotResponse{
		ID:       spot.ID,
		Tag:      spot.Tag,
		Location: location,
		Reserved: spot.Reserved,
		User:     spot.ReservedBy,
	}
}

// ConvertParkingSpots конвертирует список мест, сохраняя порядок
func ConvertParkingSpots(spots []*domain.ParkingSpot) []ParkingSpotResponse {
	out := make([]ParkingSpotResponse, 0, len(spots))
	for _, s := range spots {
		out = append(out, ConvertParkingSpot(s))
	}
	return out
}
