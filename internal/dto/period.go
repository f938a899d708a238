package dto

// CreatePeriodRequest 创建报告期请求
type CreatePeriodRequest struct {
	Year      int    `json:"year"       binding:"required,min=2000,max=2100"`
	Quarter   int    `json:"quarter"    binding:"required,min=1,max=4"`
	StartDate string `json:"start_date" binding:"required"` // "2024-07-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2024-09-30"
}

// UpdatePeriodRequest 更新报告期请求
type UpdatePeriodRequest struct {
	Year      *int    `json:"year"       binding:"omitempty,min=2000,max=2100"`
	Quarter   *int    `json:"quarter"    binding:"omitempty,min=1,max=4"`
	StartDate *string `json:"start_date" binding:"omitempty"`
	EndDate   *string `json:"end_date"   binding:"omitempty"`
}

// PeriodResponse 报告期响应
type PeriodResponse struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	Quarter   int    `json:"quarter"`
	Label     string `json:"label"` // 如 "Q3-2024"
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"` // open | closed
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
