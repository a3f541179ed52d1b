package models

import "time"

// ActivityEvent is one entry of the activity log, derived from a refresh of
// the currently selected coin.
type ActivityEvent struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Symbol   string    `json:"symbol"`
	Change24 float64   `json:"change_24h"`
	Mood     Mood      `json:"mood"`
	Price    float64   `json:"price"`
}

// EnergyBurst is a volume-derived visual effect descriptor.
type EnergyBurst struct {
	ID        string    `json:"id"`
	Intensity float64   `json:"intensity"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityFlash is a short-lived screen-position effect descriptor. It
// expires on its own timer independent of further refresh activity.
type ActivityFlash struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DragonState is the presentation aggregate for the selected coin.
type DragonState struct {
	Selected    *CoinSnapshot `json:"selected,omitempty"`
	Mood        Mood          `json:"mood"`
	EnergyLevel float64       `json:"energy_level"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
