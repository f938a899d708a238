package repository

import (
	"context"

	"gorm.io/gorm"

	"agencyhub/internal/model"
)

// SectorRepository 行业数据访问接口
type SectorRepository interface {
	Create(ctx context.Context, sector *model.Sector) error
	GetByID(ctx context.Context, id string) (*model.Sector, error)
	List(ctx context.Context) ([]model.Sector, error)
	Update(ctx context.Context, sector *model.Sector) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountAgencies(ctx context.Context, sectorID string) (int64, error)
}

type sectorRepo struct {
	db *gorm.DB
}

// NewSectorRepo 创建 SectorRepository 实例
func NewSectorRepo(db *gorm.DB) SectorRepository {
	return &sectorRepo{db: db}
}

func (r *sectorRepo) Create(ctx context.Context, sector *model.Sector) error {
	return r.db.WithContext(ctx).Create(sector).Error
}

func (r *sectorRepo) GetByID(ctx context.Context, id string) (*model.Sector, error) {
	var sector model.Sector
	err := r.db.WithContext(ctx).
		Where("sector_id = ?", id).
		First(&sector).Error
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *sectorRepo) List(ctx context.Context) ([]model.Sector, error) {
	var sectors []model.Sector
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&sectors).Error
	return sectors, err
}

func (r *sectorRepo) Update(ctx context.Context, sector *model.Sector) error {
	return r.db.WithContext(ctx).Save(sector).Error
}

func (r *sectorRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Sector{}).
		Where("sector_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountAgencies 统计行业下未删除机构数量（删除前校验）
func (r *sectorRepo) CountAgencies(ctx context.Context, sectorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Agency{}).
		Where("sector_id = ?", sectorID).
		Count(&count).Error
	return count, err
}
