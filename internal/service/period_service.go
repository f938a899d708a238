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

// ── 报告期模块业务错误 ──

var (
	ErrPeriodNotFound    = errors.New("报告期不存在")
	ErrPeriodDateInvalid = errors.New("报告期结束日期必须晚于开始日期")
	ErrPeriodDuplicate   = errors.New("该年度季度的报告期已存在")
	ErrNoOpenPeriod      = errors.New("当前无开放报告期")
)

// PeriodService 报告期业务接口
type PeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	GetOpen(ctx context.Context) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	Open(ctx context.Context, id string, callerID string) error
	Close(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
	// Resolve 解析报告期：指定 ID 按主键查找（不存在返回 ErrPeriodNotFound），
	// 省略时返回当前 open 报告期（无 open 报告期返回 ErrNoOpenPeriod）
	Resolve(ctx context.Context, periodID string) (*model.ReportingPeriod, error)
	// ExportCalendar 导出全部报告期窗口为 iCalendar
	ExportCalendar(ctx context.Context) ([]byte, string, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrPeriodDateInvalid
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrPeriodDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrPeriodDateInvalid
	}

	// 年度+季度唯一
	existing, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("查询报告期列表失败", zap.Error(err))
		return nil, err
	}
	for i := range existing {
		if existing[i].Year == req.Year && existing[i].Quarter == req.Quarter {
			return nil, ErrPeriodDuplicate
		}
	}

	period := &model.ReportingPeriod{
		Year:      req.Year,
		Quarter:   req.Quarter,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    model.PeriodStatusClosed,
	}
	period.CreatedBy = &callerID
	period.UpdatedBy = &callerID

	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.logger.Error("创建报告期失败", zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *periodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询报告期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period), nil
}

// ────────────────────── GetOpen ──────────────────────

func (s *periodService) GetOpen(ctx context.Context) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenPeriod
		}
		s.logger.Error("查询开放报告期失败", zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period), nil
}

// ────────────────────── List ──────────────────────

func (s *periodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出报告期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, *s.toPeriodResponse(&periods[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *periodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询报告期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Year != nil {
		period.Year = *req.Year
	}
	if req.Quarter != nil {
		period.Quarter = *req.Quarter
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.EndDate = endDate
	}
	if !period.EndDate.After(period.StartDate) {
		return nil, ErrPeriodDateInvalid
	}

	period.UpdatedBy = &callerID

	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.logger.Error("更新报告期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period), nil
}

// ────────────────────── Open ──────────────────────

// Open 开放报告期：事务内先关闭当前 open 报告期，再开放目标报告期
// 与数据库部分唯一索引共同保证"至多一个 open"不变量
func (s *periodService) Open(ctx context.Context, id string, callerID string) error {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if period.Status == model.PeriodStatusOpen {
		return nil // 已处于开放状态，幂等返回
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

	if err := txRepo.Period.CloseOpen(ctx, callerID); err != nil {
		txRollback(tx)
		s.logger.Error("关闭当前报告期失败", zap.Error(err))
		return err
	}

	period.Status = model.PeriodStatusOpen
	period.UpdatedBy = &callerID

	if err := txRepo.Period.Update(ctx, period); err != nil {
		txRollback(tx)
		s.logger.Error("开放报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := txCommit(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Close ──────────────────────

func (s *periodService) Close(ctx context.Context, id string, callerID string) error {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if period.Status == model.PeriodStatusClosed {
		return nil
	}

	period.Status = model.PeriodStatusClosed
	period.UpdatedBy = &callerID

	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.logger.Error("关闭报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *periodService) Delete(ctx context.Context, id string, callerID string) error {
	_, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Period.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除报告期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Resolve ──────────────────────

func (s *periodService) Resolve(ctx context.Context, periodID string) (*model.ReportingPeriod, error) {
	if periodID != "" {
		period, err := s.repo.Period.GetByID(ctx, periodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPeriodNotFound
			}
			return nil, err
		}
		return period, nil
	}

	period, err := s.repo.Period.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenPeriod
		}
		return nil, err
	}
	return period, nil
}

// ── 内部辅助方法 ──

func (s *periodService) toPeriodResponse(period *model.ReportingPeriod) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:        period.PeriodID,
		Year:      period.Year,
		Quarter:   period.Quarter,
		Label:     period.Label(),
		StartDate: period.StartDate.Format("2006-01-02"),
		EndDate:   period.EndDate.Format("2006-01-02"),
		Status:    period.Status,
		CreatedAt: period.CreatedAt.Format(time.RFC3339),
		UpdatedAt: period.UpdatedAt.Format(time.RFC3339),
	}
}
