package domain

type ServiceCategory string

const (
	CategoryElectrical ServiceCategory = "electrical"
	CategoryTechnical  ServiceCategory = "technical"
	CategoryMechanical ServiceCategory = "mechanical"
	CategoryPlumbing   ServiceCategory = "plumbing"
)

// Categories lists every service category in display order.
var Categories = []ServiceCategory{
	CategoryElectrical,
	CategoryTechnical,
	CategoryMechanical,
	CategoryPlumbing,
}

func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryElectrical, CategoryTechnical, CategoryMechanical, CategoryPlumbing:
		return true
	default:
		return false
	}
}

// BookingStatus is the lifecycle state of a booking. Values outside the
// constants below are kept verbatim when decoded.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
