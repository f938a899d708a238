package repository

import (
	"context"

	"gorm.io/gorm"

	"agencyhub/internal/model"
)

// AgencyRepository 机构数据访问接口
type AgencyRepository interface {
	Create(ctx context.Context, agency *model.Agency) error
	GetByID(ctx context.Context, id string) (*model.Agency, error)
	List(ctx context.Context) ([]model.Agency, error)
	ListBySector(ctx context.Context, sectorID string) ([]model.Agency, error)
	Update(ctx context.Context, agency *model.Agency) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountUsers(ctx context.Context, agencyID string) (int64, error)
}

type agencyRepo struct {
	db *gorm.DB
}

// NewAgencyRepo 创建 AgencyRepository 实例
func NewAgencyRepo(db *gorm.DB) AgencyRepository {
	return &agencyRepo{db: db}
}

func (r *agencyRepo) Create(ctx context.Context, agency *model.Agency) error {
	return r.db.WithContext(ctx).Create(agency).Error
}

func (r *agencyRepo) GetByID(ctx context.Context, id string) (*model.Agency, error) {
	var agency model.Agency
	err := r.db.WithContext(ctx).
		Preload("Sector").
		Where("agency_id = ?", id).
		First(&agency).Error
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepo) List(ctx context.Context) ([]model.Agency, error) {
	var agencies []model.Agency
	err := r.db.WithContext(ctx).
		Preload("Sector").
		Order("name ASC").
		Find(&agencies).Error
	return agencies, err
}

func (r *agencyRepo) ListBySector(ctx context.Context, sectorID string) ([]model.Agency, error) {
	var agencies []model.Agency
	err := r.db.WithContext(ctx).
		Where("sector_id = ?", sectorID).
		Order("name ASC").
		Find(&agencies).Error
	return agencies, err
}

func (r *agencyRepo) Update(ctx context.Context, agency *model.Agency) error {
	return r.db.WithContext(ctx).Save(agency).Error
}

func (r *agencyRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Agency{}).
		Where("agency_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountUsers 统计机构下未删除用户数量（删除前校验）
func (r *agencyRepo) CountUsers(ctx context.Context, agencyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("agency_id = ?", agencyID).
		Count(&count).Error
	return count, err
}
