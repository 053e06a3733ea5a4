package attendance

type CheckInRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Photo     string  `json:"photo" binding:"required"`
}

type CheckOutRequest struct {
	Photo string `json:"photo" binding:"required"`
}

type SaveManualRequest struct {
	EmployeeID    string   `json:"employee_id" binding:"required,uuid"`
	Date          string   `json:"date" binding:"required"`
	CheckInTime   *string  `json:"check_in_time"`
	CheckOutTime  *string  `json:"check_out_time"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	LocationLabel string   `json:"location_label"`
	Status        string   `json:"status" binding:"required,oneof=PRESENT LATE ABSENT ON_LEAVE SICK PAID_LEAVE FIELD_ASSIGNMENT"`
}

type ListFilter struct {
	EmployeeID string
	RoleID     string
	DateFrom   string
	DateTo     string
	Status     string
}

type AttendanceResponse struct {
	ID            string   `json:"id"`
	EmployeeID    string   `json:"employee_id"`
	Date          string   `json:"date"`
	CheckInTime   *string  `json:"check_in_time"`
	CheckOutTime  *string  `json:"check_out_time"`
	CheckInPhoto  *string  `json:"check_in_photo,omitempty"`
	CheckOutPhoto *string  `json:"check_out_photo,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	LocationLabel string   `json:"location_label"`
	Status        string   `json:"status"`
	WorkDuration  *string  `json:"work_duration"`
	SourceLeaveID *string  `json:"source_leave_id,omitempty"`
	ExternalRef   *string  `json:"external_ref,omitempty"`
}

type TodaySummaryResponse struct {
	Present  int `json:"present"`
	Late     int `json:"late"`
	OnLeave  int `json:"on_leave"`
	NotYetIn int `json:"not_yet_in"`
}
