package repository

import (
	"context"

	"gorm.io/gorm"

	"agencyhub/internal/model"
)

// PeriodRepository 报告期数据访问接口
type PeriodRepository interface {
	Create(ctx context.Context, period *model.ReportingPeriod) error
	GetByID(ctx context.Context, id string) (*model.ReportingPeriod, error)
	GetOpen(ctx context.Context) (*model.ReportingPeriod, error)
	List(ctx context.Context) ([]model.ReportingPeriod, error)
	Update(ctx context.Context, period *model.ReportingPeriod) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CloseOpen(ctx context.Context, updatedBy string) error
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.ReportingPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.ReportingPeriod, error) {
	var period model.ReportingPeriod
	err := r.db.WithContext(ctx).
		Where("period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// GetOpen 查询当前 open 报告期
// 部分唯一索引保证至多一条；不存在时返回 gorm.ErrRecordNotFound
func (r *periodRepo) GetOpen(ctx context.Context) (*model.ReportingPeriod, error) {
	var period model.ReportingPeriod
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PeriodStatusOpen).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) List(ctx context.Context) ([]model.ReportingPeriod, error) {
	var periods []model.ReportingPeriod
	err := r.db.WithContext(ctx).
		Order("year DESC, quarter DESC").
		Find(&periods).Error
	return periods, err
}

func (r *periodRepo) Update(ctx context.Context, period *model.ReportingPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *periodRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ReportingPeriod{}).
		Where("period_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CloseOpen 将当前 open 报告期置为 closed
// 开启新报告期的事务中先调用此方法，保证"至多一个 open"不变量
func (r *periodRepo) CloseOpen(ctx context.Context, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ReportingPeriod{}).
		Where("status = ?", model.PeriodStatusOpen).
		Updates(map[string]interface{}{
			"status":     model.PeriodStatusClosed,
			"updated_by": updatedBy,
		}).Error
}
