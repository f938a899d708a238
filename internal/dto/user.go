package dto

// CreateUserRequest 创建用户请求（仅 admin）
type CreateUserRequest struct {
	Username        string  `json:"username"         binding:"required,min=3,max=50"`
	Name            string  `json:"name"             binding:"required,min=2,max=100"`
	Password        string  `json:"password"         binding:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
	Role            string  `json:"role"             binding:"required,oneof=admin agency"`
	AgencyID        *string `json:"agency_id"        binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户请求（零值字段不动）
type UpdateUserRequest struct {
	Username        *string `json:"username"         binding:"omitempty,min=3,max=50"`
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	Password        *string `json:"password"         binding:"omitempty,min=8,max=72"`
	ConfirmPassword *string `json:"confirm_password" binding:"omitempty"`
	Role            *string `json:"role"             binding:"omitempty,oneof=admin agency"`
	AgencyID        *string `json:"agency_id"        binding:"omitempty,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	AgencyID string `form:"agency_id" binding:"omitempty,uuid"`
	Role     string `form:"role"      binding:"omitempty,oneof=admin agency"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	AgencyID   *string `json:"agency_id,omitempty"`
	AgencyName string  `json:"agency_name,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
