package dto

// CreateProgramRequest 创建计划请求
type CreateProgramRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	SectorID    string `json:"sector_id"   binding:"required,uuid"`
	// AgencyID 仅 admin 可指定；agency 角色固定为本机构
	AgencyID string `json:"agency_id" binding:"omitempty,uuid"`
}

// UpdateProgramRequest 更新计划请求
type UpdateProgramRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	SectorID    *string `json:"sector_id"   binding:"omitempty,uuid"`
}

// ReassignProgramRequest 计划所有权转移请求（仅 admin）
type ReassignProgramRequest struct {
	AgencyID string `json:"agency_id" binding:"required,uuid"`
}

// AssignProgramRequest 计划授权请求（仅 admin）
type AssignProgramRequest struct {
	AgencyID string `json:"agency_id" binding:"required,uuid"`
}

// ProgramListRequest 计划列表查询参数
type ProgramListRequest struct {
	AgencyID        string `form:"agency_id"        binding:"omitempty,uuid"`
	SectorID        string `form:"sector_id"        binding:"omitempty,uuid"`
	IncludeAssigned bool   `form:"include_assigned"`
}

// ProgramResponse 计划响应
// Assigned 标识该计划是授权而来（相对查询机构而言）
type ProgramResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AgencyID    string `json:"agency_id"`
	AgencyName  string `json:"agency_name,omitempty"`
	SectorID    string `json:"sector_id"`
	SectorName  string `json:"sector_name,omitempty"`
	Assigned    bool   `json:"assigned"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
