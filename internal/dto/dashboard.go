package dto

// DashboardRequest 仪表盘查询参数
// PeriodID 省略时解析为当前 open 报告期
// IncludeAssigned 默认 false：授权计划不计入统计
type DashboardRequest struct {
	PeriodID        string `form:"period_id"        binding:"omitempty,uuid"`
	IncludeAssigned bool   `form:"include_assigned"`
}

// StatusCounts 四个状态桶的计数
type StatusCounts struct {
	OnTrack    int `json:"on-track"`
	Delayed    int `json:"delayed"`
	Completed  int `json:"completed"`
	NotStarted int `json:"not-started"`
}

// ChartPoint 图表序列中的一个点
type ChartPoint struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardResponse 机构仪表盘聚合结果
// 不变量：SubmittedCount + DraftCount + NotSubmittedCount == TotalPrograms
type DashboardResponse struct {
	PeriodID          string       `json:"period_id,omitempty"`
	PeriodLabel       string       `json:"period_label,omitempty"`
	PeriodOpen        bool         `json:"period_open"`
	TotalPrograms     int          `json:"total_programs"`
	SubmittedCount    int          `json:"submitted_count"`
	DraftCount        int          `json:"draft_count"`
	NotSubmittedCount int          `json:"not_submitted_count"`
	StatusCounts      StatusCounts `json:"status_counts"`
	ChartSeries       []ChartPoint `json:"chart_series"`
}

// SectorBreakdownItem 单个行业的聚合结果（admin 全局视图）
type SectorBreakdownItem struct {
	SectorID      string       `json:"sector_id"`
	SectorName    string       `json:"sector_name"`
	TotalPrograms int          `json:"total_programs"`
	StatusCounts  StatusCounts `json:"status_counts"`
	Progress      float64      `json:"progress"` // 已提交占比（%）
}

// AdminDashboardResponse admin 全局仪表盘：按行业分组
type AdminDashboardResponse struct {
	PeriodID    string                `json:"period_id,omitempty"`
	PeriodLabel string                `json:"period_label,omitempty"`
	PeriodOpen  bool                  `json:"period_open"`
	Totals      DashboardResponse     `json:"totals"`
	Sectors     []SectorBreakdownItem `json:"sectors"`
}
