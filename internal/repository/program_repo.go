package repository

import (
	"context"

	"gorm.io/gorm"

	"agencyhub/internal/model"
)

// ProgramFilter 计划列表过滤条件
type ProgramFilter struct {
	AgencyID string
	SectorID string
}

// ProgramRepository 计划数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id string) (*model.Program, error)
	List(ctx context.Context, filter ProgramFilter) ([]model.Program, error)
	ListOwnedByAgency(ctx context.Context, agencyID string) ([]model.Program, error)
	ListAssignedToAgency(ctx context.Context, agencyID string) ([]model.Program, error)
	Update(ctx context.Context, program *model.Program) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountByCreator(ctx context.Context, userID string) (int64, error)
	Assign(ctx context.Context, assignment *model.ProgramAssignment) error
	Unassign(ctx context.Context, programID, agencyID string) error
	DeleteAssignments(ctx context.Context, programID string) error
	IsAssignedTo(ctx context.Context, programID, agencyID string) (bool, error)
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo 创建 ProgramRepository 实例
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Preload("Agency").
		Preload("Sector").
		Where("program_id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) List(ctx context.Context, filter ProgramFilter) ([]model.Program, error) {
	q := r.db.WithContext(ctx).Model(&model.Program{})

	if filter.AgencyID != "" {
		q = q.Where("agency_id = ?", filter.AgencyID)
	}
	if filter.SectorID != "" {
		q = q.Where("sector_id = ?", filter.SectorID)
	}

	var programs []model.Program
	err := q.Preload("Agency").
		Preload("Sector").
		Order("name ASC").
		Find(&programs).Error
	return programs, err
}

// ListOwnedByAgency 查询机构自建（所有权归属）的计划
func (r *programRepo) ListOwnedByAgency(ctx context.Context, agencyID string) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Preload("Sector").
		Where("agency_id = ?", agencyID).
		Order("name ASC").
		Find(&programs).Error
	return programs, err
}

// ListAssignedToAgency 查询授权给机构（非所有权）的计划
func (r *programRepo) ListAssignedToAgency(ctx context.Context, agencyID string) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Preload("Sector").
		Joins("JOIN program_assignments pa ON pa.program_id = programs.program_id").
		Where("pa.agency_id = ? AND programs.deleted_at IS NULL", agencyID).
		Order("programs.name ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepo) Update(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func (r *programRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Program{}).
		Where("program_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountByCreator 统计用户创建且未删除的计划数量（用户删除前校验）
func (r *programRepo) CountByCreator(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Program{}).
		Where("created_by = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *programRepo) Assign(ctx context.Context, assignment *model.ProgramAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *programRepo) Unassign(ctx context.Context, programID, agencyID string) error {
	return r.db.WithContext(ctx).
		Where("program_id = ? AND agency_id = ?", programID, agencyID).
		Delete(&model.ProgramAssignment{}).Error
}

// DeleteAssignments 删除计划的全部授权（级联删除计划时使用）
func (r *programRepo) DeleteAssignments(ctx context.Context, programID string) error {
	return r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Delete(&model.ProgramAssignment{}).Error
}

func (r *programRepo) IsAssignedTo(ctx context.Context, programID, agencyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProgramAssignment{}).
		Where("program_id = ? AND agency_id = ?", programID, agencyID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
