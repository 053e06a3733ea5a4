package auditlog

type AppendEntryRequest struct {
	Action string `json:"action" binding:"required"`
	Detail string `json:"detail" binding:"required"`
}
