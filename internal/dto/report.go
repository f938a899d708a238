package dto

// GenerateReportRequest 生成 PPTX 报告请求（仅 admin）
type GenerateReportRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
}

// GenerateReportResponse 报告生成结果
type GenerateReportResponse struct {
	Success  bool   `json:"success"`
	Path     string `json:"path,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ── 渲染服务 RPC 载荷 ──

// RendererPeriod 渲染服务报告期载荷
type RendererPeriod struct {
	Year      int    `json:"year"`
	Quarter   int    `json:"quarter"`
	Label     string `json:"label"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// RendererProgram 渲染服务计划载荷
type RendererProgram struct {
	Name        string `json:"name"`
	AgencyName  string `json:"agencyName"`
	Status      string `json:"status"`
	Target      string `json:"target,omitempty"`
	Achievement string `json:"achievement,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// RendererSector 渲染服务行业载荷
type RendererSector struct {
	Name     string            `json:"name"`
	Programs []RendererProgram `json:"programs"`
}

// RendererRequest POST /generate-report 请求体
type RendererRequest struct {
	PeriodID string           `json:"periodId"`
	Period   RendererPeriod   `json:"period"`
	Sectors  []RendererSector `json:"sectors"`
}

// RendererResponse 渲染服务成功响应
type RendererResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}
