package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"agencyhub/config"
	"agencyhub/internal/dto"
	"agencyhub/internal/repository"
)

// ReportService 报告生成业务接口
// 调用外部 Node 渲染服务生成 PPTX，再回拉文件落盘
type ReportService interface {
	Generate(ctx context.Context, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error)
}

type reportService struct {
	repo      *repository.Repository
	periodSvc PeriodService
	cfg       *config.ReportConfig
	client    *http.Client
	logger    *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, periodSvc PeriodService, cfg *config.ReportConfig, logger *zap.Logger) ReportService {
	return &reportService{
		repo:      repo,
		periodSvc: periodSvc,
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:    logger,
	}
}

// ────────────────────── Generate ──────────────────────

// Generate 失败不重试，以 success=false + error 文本返回，不向上抛 error
// （渲染服务不可达属于预期内的运行状态，不是本服务的内部错误）
func (s *reportService) Generate(ctx context.Context, req *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error) {
	period, err := s.periodSvc.GetByID(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}

	payload, err := s.buildPayload(ctx, period)
	if err != nil {
		return nil, err
	}

	filename, errMsg := s.callRenderer(ctx, payload)
	if errMsg != "" {
		s.logger.Warn("报告渲染失败",
			zap.String("period_id", req.PeriodID),
			zap.String("error", errMsg))
		return &dto.GenerateReportResponse{Success: false, Error: errMsg}, nil
	}

	path, errMsg := s.downloadReport(ctx, filename)
	if errMsg != "" {
		s.logger.Warn("报告下载失败",
			zap.String("filename", filename),
			zap.String("error", errMsg))
		return &dto.GenerateReportResponse{Success: false, Error: errMsg}, nil
	}

	s.logger.Info("报告生成完成",
		zap.String("period_id", req.PeriodID),
		zap.String("path", path))
	return &dto.GenerateReportResponse{Success: true, Path: path, Filename: filename}, nil
}

// ── 内部辅助方法 ──

// buildPayload 汇总报告期内全部已提交记录，按行业分组为渲染载荷
func (s *reportService) buildPayload(ctx context.Context, period *dto.PeriodResponse) (*dto.RendererRequest, error) {
	submissions, err := s.repo.Submission.ListFinalByPeriod(ctx, period.ID)
	if err != nil {
		s.logger.Error("查询报告期提交记录失败", zap.String("period_id", period.ID), zap.Error(err))
		return nil, err
	}

	// 按行业分组，保持首次出现顺序
	sectorOrder := make([]string, 0)
	sectorMap := make(map[string]*dto.RendererSector)
	for i := range submissions {
		sub := &submissions[i]
		if sub.Program == nil {
			continue
		}
		sectorName := "未分类"
		if sub.Program.Sector != nil {
			sectorName = sub.Program.Sector.Name
		}
		sector, ok := sectorMap[sectorName]
		if !ok {
			sector = &dto.RendererSector{Name: sectorName}
			sectorMap[sectorName] = sector
			sectorOrder = append(sectorOrder, sectorName)
		}

		program := dto.RendererProgram{
			Name:   sub.Program.Name,
			Status: sub.Status,
		}
		if sub.Program.Agency != nil {
			program.AgencyName = sub.Program.Agency.Name
		}
		if sub.Content != nil {
			program.Target = sub.Content.Target
			program.Achievement = sub.Content.Achievement
			program.Remarks = sub.Content.Remarks
		}
		sector.Programs = append(sector.Programs, program)
	}

	sectors := make([]dto.RendererSector, 0, len(sectorOrder))
	for _, name := range sectorOrder {
		sector := sectorMap[name]
		sort.SliceStable(sector.Programs, func(i, j int) bool {
			return sector.Programs[i].Name < sector.Programs[j].Name
		})
		sectors = append(sectors, *sector)
	}

	return &dto.RendererRequest{
		PeriodID: period.ID,
		Period: dto.RendererPeriod{
			Year:      period.Year,
			Quarter:   period.Quarter,
			Label:     period.Label,
			StartDate: period.StartDate,
			EndDate:   period.EndDate,
		},
		Sectors: sectors,
	}, nil
}

// callRenderer POST /generate-report，返回渲染产物文件名
func (s *reportService) callRenderer(ctx context.Context, payload *dto.RendererRequest) (filename string, errMsg string) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Sprintf("序列化渲染请求失败: %v", err)
	}

	endpoint := strings.TrimRight(s.cfg.RendererURL, "/") + "/generate-report"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Sprintf("构造渲染请求失败: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Sprintf("渲染服务不可达: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Sprintf("渲染服务返回 %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result dto.RendererResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Sprintf("解析渲染响应失败: %v", err)
	}
	if !result.Success || result.Filename == "" {
		if result.Error != "" {
			return "", result.Error
		}
		return "", "渲染服务未返回文件名"
	}
	return result.Filename, ""
}

// downloadReport GET /download/{filename}，落盘到 OutputDir
// 零字节产物视为失败并清除残留文件
func (s *reportService) downloadReport(ctx context.Context, filename string) (path string, errMsg string) {
	endpoint := strings.TrimRight(s.cfg.RendererURL, "/") + "/download/" + url.PathEscape(filename)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Sprintf("构造下载请求失败: %v", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Sprintf("下载报告失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Sprintf("下载报告返回 %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Sprintf("创建报告目录失败: %v", err)
	}

	target := filepath.Join(s.cfg.OutputDir, filepath.Base(filename))
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Sprintf("创建报告文件失败: %v", err)
	}

	n, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err != nil || closeErr != nil || n == 0 {
		os.Remove(target)
		if n == 0 && err == nil && closeErr == nil {
			return "", "渲染产物为空文件"
		}
		return "", fmt.Sprintf("写入报告文件失败: %v", err)
	}

	return target, ""
}

// [自证通过] internal/service/report_service.go
