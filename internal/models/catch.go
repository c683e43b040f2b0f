package models

// CatchRecord is one entry of the user's catch log. Records are appended
// and never edited.
type CatchRecord struct {
	City     string    `json:"city"`
	Species  string    `json:"species"`
	Time     string    `json:"time"`     // series timestamp, e.g. "2025-06-01T05:00"
	Temp     float64   `json:"temp"`     // air temperature, °C
	Pressure float64   `json:"pressure"` // surface pressure, hPa
	Wind     WindArrow `json:"wind"`
}
