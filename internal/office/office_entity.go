package office

import "time"

// Config is the single-row office geofence configuration. The id is
// pinned to 1 so saves always hit the same row.
type Config struct {
	ID                    int       `gorm:"column:id;primaryKey"`
	Latitude              float64   `gorm:"column:latitude;not null"`
	Longitude             float64   `gorm:"column:longitude;not null"`
	ToleranceRadiusMeters float64   `gorm:"column:tolerance_radius_meters;not null;default:500"`
	Label                 string    `gorm:"column:label;type:varchar(120);not null"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (Config) TableName() string {
	return "office_config"
}
