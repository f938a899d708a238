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

// ── DashboardService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 聚合是存储状态的纯函数：同样的 (机构, 报告期, 提交行) 必然产出
//     同样的结果，调用之间不做任何缓存（仪表盘要求实时数字）。
//   - 工作集 = 机构自建计划 ∪ 授权计划（include_assigned=true 时），
//     默认不含授权计划。
//   - 每个计划恰好落入一种填报状态（已提交/草稿/未填报），三者之和
//     等于计划总数。
//   - 状态桶由已提交记录携带的状态推导；无任何提交记录固定为
//     not-started；仅有草稿的计划视为填报中，不计入任何状态桶。
//   - 省略 period_id 且无开放报告期是合法业务状态（季度间歇），
//     返回"无填报窗口"的空聚合而非错误。
// ─────────────────────────────────────────────────────────────

// DashboardService 仪表盘聚合业务接口
type DashboardService interface {
	// Aggregate 机构视角聚合
	Aggregate(ctx context.Context, agencyID string, req *dto.DashboardRequest) (*dto.DashboardResponse, error)
	// AggregateGlobal admin 视角全局聚合（按行业分组）
	AggregateGlobal(ctx context.Context, req *dto.DashboardRequest) (*dto.AdminDashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// programDisposition 单个计划在报告期内的填报处置
type programDisposition int

const (
	dispositionNotSubmitted programDisposition = iota
	dispositionDraft
	dispositionSubmitted
)

// ════════════════════════════════════════════════════════════
// Aggregate — 机构视角聚合
// ════════════════════════════════════════════════════════════

func (s *dashboardService) Aggregate(ctx context.Context, agencyID string, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	period, err := s.resolvePeriod(ctx, req.PeriodID)
	if err != nil {
		if errors.Is(err, ErrNoOpenPeriod) {
			// 季度间歇：无填报窗口，返回空聚合
			return &dto.DashboardResponse{PeriodOpen: false, ChartSeries: emptyChartSeries()}, nil
		}
		return nil, err
	}

	programs, err := s.buildWorklist(ctx, agencyID, req.IncludeAssigned)
	if err != nil {
		return nil, err
	}

	resp, err := s.aggregatePrograms(ctx, period, programs)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// AggregateGlobal — admin 全局聚合
// ════════════════════════════════════════════════════════════

func (s *dashboardService) AggregateGlobal(ctx context.Context, req *dto.DashboardRequest) (*dto.AdminDashboardResponse, error) {
	period, err := s.resolvePeriod(ctx, req.PeriodID)
	if err != nil {
		if errors.Is(err, ErrNoOpenPeriod) {
			return &dto.AdminDashboardResponse{
				PeriodOpen: false,
				Totals:     dto.DashboardResponse{PeriodOpen: false, ChartSeries: emptyChartSeries()},
				Sectors:    []dto.SectorBreakdownItem{},
			}, nil
		}
		return nil, err
	}

	programs, err := s.repo.Program.List(ctx, repository.ProgramFilter{})
	if err != nil {
		s.logger.Error("查询计划列表失败", zap.Error(err))
		return nil, err
	}

	totals, err := s.aggregatePrograms(ctx, period, programs)
	if err != nil {
		return nil, err
	}

	dispositions, buckets, err := s.classify(ctx, period.PeriodID, programs)
	if err != nil {
		return nil, err
	}

	// 按行业分组（保留首次出现顺序，与计划排序一致）
	sectorMap := make(map[string]*dto.SectorBreakdownItem)
	var sectorOrder []string
	submittedBySector := make(map[string]int)
	for i := range programs {
		p := &programs[i]
		sectorName := ""
		if p.Sector != nil {
			sectorName = p.Sector.Name
		}
		item, ok := sectorMap[p.SectorID]
		if !ok {
			item = &dto.SectorBreakdownItem{
				SectorID:   p.SectorID,
				SectorName: sectorName,
			}
			sectorMap[p.SectorID] = item
			sectorOrder = append(sectorOrder, p.SectorID)
		}
		item.TotalPrograms++
		addBucket(&item.StatusCounts, buckets[p.ProgramID])
		if dispositions[p.ProgramID] == dispositionSubmitted {
			submittedBySector[p.SectorID]++
		}
	}

	sectors := make([]dto.SectorBreakdownItem, 0, len(sectorMap))
	for _, id := range sectorOrder {
		item := sectorMap[id]
		if item.TotalPrograms > 0 {
			item.Progress = float64(submittedBySector[id]) / float64(item.TotalPrograms) * 100
		}
		sectors = append(sectors, *item)
	}

	return &dto.AdminDashboardResponse{
		PeriodID:    period.PeriodID,
		PeriodLabel: period.Label(),
		PeriodOpen:  period.Status == model.PeriodStatusOpen,
		Totals:      *totals,
		Sectors:     sectors,
	}, nil
}

// ── 私有辅助方法 ──

// resolvePeriod 解析报告期：指定 ID 或当前 open 报告期
func (s *dashboardService) resolvePeriod(ctx context.Context, periodID string) (*model.ReportingPeriod, error) {
	if periodID != "" {
		period, err := s.repo.Period.GetByID(ctx, periodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPeriodNotFound
			}
			s.logger.Error("查询报告期失败", zap.String("id", periodID), zap.Error(err))
			return nil, err
		}
		return period, nil
	}

	period, err := s.repo.Period.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenPeriod
		}
		s.logger.Error("查询开放报告期失败", zap.Error(err))
		return nil, err
	}
	return period, nil
}

// buildWorklist 构建聚合工作集：自建计划 ∪ 授权计划（按 ProgramID 去重）
func (s *dashboardService) buildWorklist(ctx context.Context, agencyID string, includeAssigned bool) ([]model.Program, error) {
	owned, err := s.repo.Program.ListOwnedByAgency(ctx, agencyID)
	if err != nil {
		s.logger.Error("查询自建计划失败", zap.String("agency_id", agencyID), zap.Error(err))
		return nil, err
	}

	if !includeAssigned {
		return owned, nil
	}

	assigned, err := s.repo.Program.ListAssignedToAgency(ctx, agencyID)
	if err != nil {
		s.logger.Error("查询授权计划失败", zap.String("agency_id", agencyID), zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(owned))
	worklist := make([]model.Program, 0, len(owned)+len(assigned))
	for i := range owned {
		seen[owned[i].ProgramID] = true
		worklist = append(worklist, owned[i])
	}
	for i := range assigned {
		if !seen[assigned[i].ProgramID] {
			seen[assigned[i].ProgramID] = true
			worklist = append(worklist, assigned[i])
		}
	}
	return worklist, nil
}

// classify 为每个计划确定填报处置与状态桶
// 权威记录选择：已提交记录优先于草稿（提交过渡期两者短暂并存时以已提交为准）
func (s *dashboardService) classify(ctx context.Context, periodID string, programs []model.Program) (map[string]programDisposition, map[string]string, error) {
	ids := make([]string, 0, len(programs))
	for i := range programs {
		ids = append(ids, programs[i].ProgramID)
	}

	subs, err := s.repo.Submission.ListByPeriodAndPrograms(ctx, periodID, ids)
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, nil, err
	}

	finals := make(map[string]*model.ProgramSubmission)
	drafts := make(map[string]*model.ProgramSubmission)
	for i := range subs {
		sub := &subs[i]
		if sub.IsDraft {
			drafts[sub.ProgramID] = sub
		} else {
			finals[sub.ProgramID] = sub
		}
	}

	dispositions := make(map[string]programDisposition, len(programs))
	buckets := make(map[string]string, len(programs))
	for i := range programs {
		id := programs[i].ProgramID
		switch {
		case finals[id] != nil:
			dispositions[id] = dispositionSubmitted
			buckets[id] = finals[id].Status
		case drafts[id] != nil:
			// 填报中：草稿状态不进入状态桶
			dispositions[id] = dispositionDraft
			buckets[id] = ""
		default:
			dispositions[id] = dispositionNotSubmitted
			buckets[id] = model.StatusNotStarted
		}
	}
	return dispositions, buckets, nil
}

// aggregatePrograms 对给定工作集做完整聚合
func (s *dashboardService) aggregatePrograms(ctx context.Context, period *model.ReportingPeriod, programs []model.Program) (*dto.DashboardResponse, error) {
	dispositions, buckets, err := s.classify(ctx, period.PeriodID, programs)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		PeriodID:      period.PeriodID,
		PeriodLabel:   period.Label(),
		PeriodOpen:    period.Status == model.PeriodStatusOpen,
		TotalPrograms: len(programs),
	}

	for i := range programs {
		id := programs[i].ProgramID
		switch dispositions[id] {
		case dispositionSubmitted:
			resp.SubmittedCount++
		case dispositionDraft:
			resp.DraftCount++
		default:
			resp.NotSubmittedCount++
		}
		addBucket(&resp.StatusCounts, buckets[id])
	}

	resp.ChartSeries = buildChartSeries(resp.StatusCounts, resp.TotalPrograms)
	return resp, nil
}

func addBucket(counts *dto.StatusCounts, bucket string) {
	switch bucket {
	case "":
		// 填报中（仅草稿），不落桶
	case model.StatusOnTrack:
		counts.OnTrack++
	case model.StatusDelayed:
		counts.Delayed++
	case model.StatusCompleted:
		counts.Completed++
	default:
		counts.NotStarted++
	}
}

// buildChartSeries 构建四个状态桶的图表序列
// total 为 0 时所有占比为 0（避免除零）
func buildChartSeries(counts dto.StatusCounts, total int) []dto.ChartPoint {
	points := []dto.ChartPoint{
		{Label: model.StatusOnTrack, Count: counts.OnTrack},
		{Label: model.StatusDelayed, Count: counts.Delayed},
		{Label: model.StatusCompleted, Count: counts.Completed},
		{Label: model.StatusNotStarted, Count: counts.NotStarted},
	}
	if total > 0 {
		for i := range points {
			points[i].Percentage = float64(points[i].Count) / float64(total) * 100
		}
	}
	return points
}

func emptyChartSeries() []dto.ChartPoint {
	return buildChartSeries(dto.StatusCounts{}, 0)
}

// [自证通过] internal/service/dashboard_service.go
