package domain

import "time"

// MediaType classifies a vehicle by the kind of outlet it is.
type MediaType string

// Known media types.
const (
	MediaSite       MediaType = "site"
	MediaBlog       MediaType = "blog"
	MediaMagazine   MediaType = "magazine"
	MediaTelevision MediaType = "television"
	MediaRadio      MediaType = "radio"
	MediaPodcast    MediaType = "podcast"
	MediaVideocast  MediaType = "videocast"
)

// VehicleStatus is the activation state of a vehicle.
type VehicleStatus string

const (
	// VehicleActive means the vehicle is eligible for ingestion.
	VehicleActive VehicleStatus = "active"
	// VehicleInactive means the vehicle is retained but not ingested.
	VehicleInactive VehicleStatus = "inactive"
)

// Vehicle is an external media outlet configured for ingestion.
// It owns sections and articles; source configs reference it.
type Vehicle struct {
	ID        string        `db:"id"         json:"id"`
	Name      string        `db:"name"       json:"name"`
	MediaType MediaType     `db:"media_type" json:"media_type"`
	Status    VehicleStatus `db:"status"     json:"status"`
	Country   string        `db:"country"    json:"country,omitempty"`
	State     string        `db:"state"      json:"state,omitempty"`
	City      string        `db:"city"       json:"city,omitempty"`
	URL       string        `db:"url"        json:"url"`
	Notes     string        `db:"notes"      json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// LocationDisplay joins the non-empty location parts for presentation.
func (v *Vehicle) LocationDisplay() string {
	out := ""
	for _, p := range []string{v.City, v.State, v.Country} {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

// Section is a named sub-division of a vehicle, created on demand when an
// article's extracted section name is first seen.
// (vehicle_id, name) is unique.
type Section struct {
	ID        string `db:"id"         json:"id"`
	VehicleID string `db:"vehicle_id" json:"vehicle_id"`
	Name      string `db:"name"       json:"name"`
}
