package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"agencyhub/internal/dto"
	"agencyhub/internal/service"
	"agencyhub/pkg/response"
)

// AgencyHandler 机构模块 HTTP 处理器
type AgencyHandler struct {
	agencySvc service.AgencyService
}

// NewAgencyHandler 创建 AgencyHandler
func NewAgencyHandler(agencySvc service.AgencyService) *AgencyHandler {
	return &AgencyHandler{agencySvc: agencySvc}
}

// Create 创建机构
// POST /api/v1/agencies
func (h *AgencyHandler) Create(c *gin.Context) {
	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agency, err := h.agencySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAgencyError(c, err)
		return
	}

	response.Created(c, agency)
}

// GetByID 获取机构详情
// GET /api/v1/agencies/:id
func (h *AgencyHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "机构 ID 不能为空")
		return
	}

	agency, err := h.agencySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAgencyError(c, err)
		return
	}

	response.OK(c, agency)
}

// List 查询机构，支持按行业过滤
// GET /api/v1/agencies?sector_id=xxx
func (h *AgencyHandler) List(c *gin.Context) {
	agencies, err := h.agencySvc.List(c.Request.Context(), c.Query("sector_id"))
	if err != nil {
		h.handleAgencyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": agencies})
}

// Update 更新机构
// PUT /api/v1/agencies/:id
func (h *AgencyHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "机构 ID 不能为空")
		return
	}

	var req dto.UpdateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agency, err := h.agencySvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAgencyError(c, err)
		return
	}

	response.OK(c, agency)
}

// Delete 删除机构
// DELETE /api/v1/agencies/:id
func (h *AgencyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "机构 ID 不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.agencySvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleAgencyError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAgencyError 统一处理机构模块业务错误
func (h *AgencyHandler) handleAgencyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAgencyNotFound):
		response.NotFound(c, 14001, "机构不存在")
	case errors.Is(err, service.ErrAgencySectorNotFound):
		response.BadRequest(c, 14002, "所属行业不存在")
	case errors.Is(err, service.ErrAgencyHasUsers):
		response.BadRequest(c, 14003, "该机构下还有用户，无法删除")
	case errors.Is(err, service.ErrAgencyHasPrograms):
		response.BadRequest(c, 14004, "该机构名下还有计划，无法删除")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/agency_handler.go
