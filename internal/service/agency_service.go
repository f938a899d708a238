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

// ── 机构模块业务错误 ──

var (
	ErrAgencyNotFound       = errors.New("机构不存在")
	ErrAgencySectorNotFound = errors.New("行业不存在")
	ErrAgencyHasUsers       = errors.New("该机构下还有用户，无法删除")
	ErrAgencyHasPrograms    = errors.New("该机构名下还有计划，无法删除")
)

// AgencyService 机构管理业务接口（仅 admin 可写）
type AgencyService interface {
	Create(ctx context.Context, req *dto.CreateAgencyRequest, callerID string) (*dto.AgencyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AgencyResponse, error)
	List(ctx context.Context, sectorID string) ([]dto.AgencyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest, callerID string) (*dto.AgencyResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type agencyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAgencyService 创建 AgencyService 实例
func NewAgencyService(repo *repository.Repository, logger *zap.Logger) AgencyService {
	return &agencyService{repo: repo, logger: logger}
}

func (s *agencyService) Create(ctx context.Context, req *dto.CreateAgencyRequest, callerID string) (*dto.AgencyResponse, error) {
	if _, err := s.repo.Sector.GetByID(ctx, req.SectorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencySectorNotFound
		}
		return nil, err
	}

	agency := &model.Agency{Name: req.Name, SectorID: req.SectorID}
	agency.CreatedBy = &callerID
	agency.UpdatedBy = &callerID

	if err := s.repo.Agency.Create(ctx, agency); err != nil {
		s.logger.Error("创建机构失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Agency.GetByID(ctx, agency.AgencyID)
	if err != nil {
		return nil, err
	}
	return toAgencyResponse(created), nil
}

func (s *agencyService) GetByID(ctx context.Context, id string) (*dto.AgencyResponse, error) {
	agency, err := s.repo.Agency.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}
	return toAgencyResponse(agency), nil
}

func (s *agencyService) List(ctx context.Context, sectorID string) ([]dto.AgencyResponse, error) {
	var agencies []model.Agency
	var err error
	if sectorID != "" {
		agencies, err = s.repo.Agency.ListBySector(ctx, sectorID)
	} else {
		agencies, err = s.repo.Agency.List(ctx)
	}
	if err != nil {
		s.logger.Error("查询机构列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AgencyResponse, 0, len(agencies))
	for i := range agencies {
		result = append(result, *toAgencyResponse(&agencies[i]))
	}
	return result, nil
}

func (s *agencyService) Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest, callerID string) (*dto.AgencyResponse, error) {
	agency, err := s.repo.Agency.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		agency.Name = *req.Name
	}
	if req.SectorID != nil {
		if _, err := s.repo.Sector.GetByID(ctx, *req.SectorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAgencySectorNotFound
			}
			return nil, err
		}
		agency.SectorID = *req.SectorID
	}
	agency.UpdatedBy = &callerID

	if err := s.repo.Agency.Update(ctx, agency); err != nil {
		s.logger.Error("更新机构失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Agency.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAgencyResponse(updated), nil
}

// Delete 机构下还有用户或计划时拒绝删除
func (s *agencyService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Agency.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgencyNotFound
		}
		return err
	}

	userCount, err := s.repo.Agency.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if userCount > 0 {
		return ErrAgencyHasUsers
	}

	programs, err := s.repo.Program.ListOwnedByAgency(ctx, id)
	if err != nil {
		return err
	}
	if len(programs) > 0 {
		return ErrAgencyHasPrograms
	}

	return s.repo.Agency.Delete(ctx, id, callerID)
}

func toAgencyResponse(agency *model.Agency) *dto.AgencyResponse {
	resp := &dto.AgencyResponse{
		ID:        agency.AgencyID,
		Name:      agency.Name,
		SectorID:  agency.SectorID,
		CreatedAt: agency.CreatedAt.Format(time.RFC3339),
		UpdatedAt: agency.UpdatedAt.Format(time.RFC3339),
	}
	if agency.Sector != nil {
		resp.SectorName = agency.Sector.Name
	}
	return resp
}

// [自证通过] internal/service/agency_service.go
