package domain

// Station represents a charging station with a fixed number of slots.
// AvailableSlots is a denormalized counter kept in sync by every mutating
// operation; the authoritative state is the set of active bookings.
type Station struct {
	ID             int64
	Name           string
	Latitude       float64
	Longitude      float64
	Address        *string
	ChargerType    string // AC or DC
	ConnectorType  string
	PowerKW        float64
	TotalSlots     int
	AvailableSlots int
	PricePerKWh    float64
	Status         string
}

// HasFreeSlot returns true if the cached counter shows free capacity
func (s *Station) HasFreeSlot() bool {
	return s.AvailableSlots > 0
}
