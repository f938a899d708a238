package model

// Sector 行业表 — 对应 sectors
// 行业用于报告生成时按板块组织机构与计划
type Sector struct {
	SectorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sector_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Sector) TableName() string { return "sectors" }
