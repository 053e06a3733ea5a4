package employee

type CreateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	RoleID   string `json:"role_id" binding:"required"`
	JoinDate string `json:"join_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	RoleID   string `json:"role_id" binding:"required"`
	Status   string `json:"status" binding:"required,oneof=AKTIF NONAKTIF"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Username       string `json:"username"`
	Phone          string `json:"phone,omitempty"`
	RoleID         string `json:"role_id"`
	JoinDate       string `json:"join_date"`
	Status         string `json:"status"`
}

type EmployeeOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	RoleID   string `json:"role_id"`
}
