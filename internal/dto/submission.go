package dto

// SaveSubmissionRequest 保存草稿/提交请求
// period_id 省略时由服务端解析为当前 open 报告期
type SaveSubmissionRequest struct {
	PeriodID    string `json:"period_id"   binding:"omitempty,uuid"`
	Status      string `json:"status"      binding:"required,oneof=on-track delayed completed not-started"`
	Target      string `json:"target"      binding:"omitempty,max=2000"`
	Achievement string `json:"achievement" binding:"omitempty,max=2000"`
	Remarks     string `json:"remarks"     binding:"omitempty,max=2000"`
}

// SubmissionResponse 提交记录响应
type SubmissionResponse struct {
	ID          string  `json:"id"`
	ProgramID   string  `json:"program_id"`
	PeriodID    string  `json:"period_id"`
	IsDraft     bool    `json:"is_draft"`
	Status      string  `json:"status"`
	Target      string  `json:"target,omitempty"`
	Achievement string  `json:"achievement,omitempty"`
	Remarks     string  `json:"remarks,omitempty"`
	SubmittedBy *string `json:"submitted_by,omitempty"`
	SubmittedAt *string `json:"submitted_at,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}
