package domain

// Location identifies a point on earth plus its display address.
// Values are immutable; relocation replaces the whole struct.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}
