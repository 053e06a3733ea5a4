package office

type UpdateConfigRequest struct {
	Latitude              float64 `json:"latitude" binding:"required"`
	Longitude             float64 `json:"longitude" binding:"required"`
	ToleranceRadiusMeters float64 `json:"tolerance_radius_meters" binding:"required,gt=0"`
	Label                 string  `json:"label" binding:"required"`
}

type ConfigResponse struct {
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	ToleranceRadiusMeters float64 `json:"tolerance_radius_meters"`
	Label                 string  `json:"label"`
}
