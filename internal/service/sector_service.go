package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agencyhub/internal/dto"
	"agencyhub/internal/model"
	"agencyhub/internal/repository"
)

// ── 行业模块业务错误 ──

var (
	ErrSectorNotFound    = errors.New("行业不存在")
	ErrSectorHasAgencies = errors.New("该行业下还有机构，无法删除")
)

// SectorService 行业管理业务接口（仅 admin 可写）
type SectorService interface {
	Create(ctx context.Context, req *dto.CreateSectorRequest, callerID string) (*dto.SectorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SectorResponse, error)
	List(ctx context.Context) ([]dto.SectorResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSectorRequest, callerID string) (*dto.SectorResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type sectorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectorService 创建 SectorService 实例
func NewSectorService(repo *repository.Repository, logger *zap.Logger) SectorService {
	return &sectorService{repo: repo, logger: logger}
}

func (s *sectorService) Create(ctx context.Context, req *dto.CreateSectorRequest, callerID string) (*dto.SectorResponse, error) {
	sector := &model.Sector{Name: req.Name}
	sector.CreatedBy = &callerID
	sector.UpdatedBy = &callerID

	if err := s.repo.Sector.Create(ctx, sector); err != nil {
		s.logger.Error("创建行业失败", zap.Error(err))
		return nil, err
	}
	return toSectorResponse(sector), nil
}

func (s *sectorService) GetByID(ctx context.Context, id string) (*dto.SectorResponse, error) {
	sector, err := s.repo.Sector.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectorNotFound
		}
		return nil, err
	}
	return toSectorResponse(sector), nil
}

func (s *sectorService) List(ctx context.Context) ([]dto.SectorResponse, error) {
	sectors, err := s.repo.Sector.List(ctx)
	if err != nil {
		s.logger.Error("查询行业列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SectorResponse, 0, len(sectors))
	for i := range sectors {
		result = append(result, *toSectorResponse(&sectors[i]))
	}
	return result, nil
}

func (s *sectorService) Update(ctx context.Context, id string, req *dto.UpdateSectorRequest, callerID string) (*dto.SectorResponse, error) {
	sector, err := s.repo.Sector.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectorNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		sector.Name = *req.Name
	}
	sector.UpdatedBy = &callerID

	if err := s.repo.Sector.Update(ctx, sector); err != nil {
		s.logger.Error("更新行业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSectorResponse(sector), nil
}

// Delete 行业下还有机构时拒绝删除
func (s *sectorService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Sector.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectorNotFound
		}
		return err
	}

	count, err := s.repo.Sector.CountAgencies(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSectorHasAgencies
	}

	return s.repo.Sector.Delete(ctx, id, callerID)
}

func toSectorResponse(sector *model.Sector) *dto.SectorResponse {
	return &dto.SectorResponse{
		ID:   sector.SectorID,
		Name: sector.Name,
	}
}
