package list_stations

import "github.com/m04kA/SMC-StationBookingService/internal/domain"

// StationResponse станция в ответе API
type StationResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Address        *string `json:"address,omitempty"`
	ChargerType    string  `json:"chargerType"`
	ConnectorType  string  `json:"connectorType"`
	PowerKW        float64 `json:"powerKw"`
	TotalSlots     int     `json:"totalSlots"`
	AvailableSlots int     `json:"availableSlots"`
	PricePerKWh    float64 `json:"pricePerKwh"`
	Status         string  `json:"status"`
}

// StationListResponse список станций
type StationListResponse struct {
	Stations []*StationResponse `json:"stations"`
	Total    int                `json:"total"`
}

// FromDomainStation конвертирует domain.Station в response-модель
func FromDomainStation(s *domain.Station) *StationResponse {
	return &StationResponse{
		ID:             s.ID,
		Name:           s.Name,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		Address:        s.Address,
		ChargerType:    s.ChargerType,
		ConnectorType:  s.ConnectorType,
		PowerKW:        s.PowerKW,
		TotalSlots:     s.TotalSlots,
		AvailableSlots: s.AvailableSlots,
		PricePerKWh:    s.PricePerKWh,
		Status:         s.Status,
	}
}

// FromDomainStationList конвертирует слайс станций
func FromDomainStationList(stations []*domain.Station) *StationListResponse {
	resp := &StationListResponse{
		Stations: make([]*StationResponse, 0, len(stations)),
		Total:    len(stations),
	}
	for _, s := range stations {
		resp.Stations = append(resp.Stations, FromDomainStation(s))
	}
	return resp
}
