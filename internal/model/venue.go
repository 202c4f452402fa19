package model

// VenueListing is one entry of the served deals feed.
type VenueListing struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Stars       float64 `json:"stars"`
	ReviewCount int     `json:"review_count"`
	IsOpen      int     `json:"is_open"`
	Categories  string  `json:"categories"`
}

// RawBusiness is the part of a raw business dataset line the deals pipeline reads.
// Other fields (attributes, hours, postal_code) are ignored.
type RawBusiness struct {
	BusinessID  string  `json:"business_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Stars       float64 `json:"stars"`
	ReviewCount int     `json:"review_count"`
	IsOpen      int     `json:"is_open"`
	Categories  *string `json:"categories"`
}

// Listing projects the raw record onto the served shape.
func (b *RawBusiness) Listing() VenueListing {
	var categories string
	if b.Categories != nil {
		categories = *b.Categories
	}
	return VenueListing{
		ID:          b.BusinessID,
		Name:        b.Name,
		Address:     b.Address,
		City:        b.City,
		State:       b.State,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Stars:       b.Stars,
		ReviewCount: b.ReviewCount,
		IsOpen:      b.IsOpen,
		Categories:  categories,
	}
}
