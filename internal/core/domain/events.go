package domain

import "time"

// ReportEvent is broadcast when an obstacle or feature is reported. Origin
// identifies the publishing instance so subscribers can skip events they
// produced themselves.
type ReportEvent struct {
	Origin string `json:"origin"`
	Report Report `json:"report"`
}

// ClearEvent is broadcast when obstacles near a point are removed.
type ClearEvent struct {
	Origin    string    `json:"origin"`
	Location  GeoPoint  `json:"location"`
	Removed   int       `json:"removed"`
	ClearedAt time.Time `json:"cleared_at"`
}
