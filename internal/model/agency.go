package model

// Agency 机构表 — 对应 agencies
type Agency struct {
	AgencyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"agency_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	SectorID string `gorm:"type:uuid;not null"                             json:"sector_id"`
	VersionedModel

	// 关联
	Sector *Sector `gorm:"foreignKey:SectorID;references:SectorID" json:"sector,omitempty"`
}

// TableName 指定表名
func (Agency) TableName() string { return "agencies" }

// [自证通过] internal/model/agency.go
