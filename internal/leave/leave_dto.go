package leave

type SubmitLeaveRequest struct {
	Kind       string  `json:"kind" binding:"required,oneof=PERSONAL_LEAVE SICK ANNUAL_LEAVE FIELD_ASSIGNMENT"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Reason     string  `json:"reason" binding:"required"`
	Attachment *string `json:"attachment"`
}

type DecisionRequest struct {
	Note string `json:"note"`
}

type AdminEditRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=PERSONAL_LEAVE SICK ANNUAL_LEAVE FIELD_ASSIGNMENT"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
	Note      string `json:"note"`
}

type ListFilter struct {
	EmployeeID string
	RoleID     string
	Status     string
	DateFrom   string
	DateTo     string
}

type LeaveResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Kind       string  `json:"kind"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalDays  int     `json:"total_days"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	AdminNote  *string `json:"admin_note"`
	Attachment *string `json:"attachment,omitempty"`
}
