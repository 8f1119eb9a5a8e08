package models

// Rating is the aggregate score reported by the external ratings service.
type Rating struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}
