package dto

// CreateAgencyRequest 创建机构请求
type CreateAgencyRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=200"`
	SectorID string `json:"sector_id" binding:"required,uuid"`
}

// UpdateAgencyRequest 更新机构请求
type UpdateAgencyRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=200"`
	SectorID *string `json:"sector_id" binding:"omitempty,uuid"`
}

// AgencyResponse 机构响应
type AgencyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SectorID   string `json:"sector_id"`
	SectorName string `json:"sector_name,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CreateSectorRequest 创建行业请求
type CreateSectorRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// UpdateSectorRequest 更新行业请求
type UpdateSectorRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
}

// SectorResponse 行业响应
type SectorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
