package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// CopyHandler 副本HTTP处理器(馆员操作+公开统计)
type CopyHandler struct {
	manageCopiesUseCase *catalog.ManageCopiesUseCase
	queryUseCase        *lending.QueryUseCase
}

// NewCopyHandler 创建副本处理器
func NewCopyHandler(
	manageCopiesUseCase *catalog.ManageCopiesUseCase,
	queryUseCase *lending.QueryUseCase,
) *CopyHandler {
	return &CopyHandler{
		manageCopiesUseCase: manageCopiesUseCase,
		queryUseCase:        queryUseCase,
	}
}

// AddCopy 副本入库
// @Summary      副本入库
// @Description  为书目入库一个新副本,初始状态在馆可借
// @Tags         副本
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCopyRequest true "所属图书"
// @Success      200 {object} response.Response{data=dto.CopyResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/copies [post]
func (h *CopyHandler) AddCopy(c *gin.Context) {
	var req dto.AddCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageCopiesUseCase.AddCopy(c.Request.Context(), req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toCopyResponse(result))
}

// SetCopyStatus 调整副本状态
// @Summary      调整副本状态
// @Description  盘点/修复等管理操作;不允许直接标记为借出
// @Tags         副本
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "副本ID"
// @Param        request body dto.SetCopyStatusRequest true "目标状态"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "不允许的状态转移"
// @Failure      404 {object} response.Response "副本不存在"
// @Router       /api/v1/copies/{id}/status [put]
func (h *CopyHandler) SetCopyStatus(c *gin.Context) {
	copyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的副本ID")
		return
	}

	var req dto.SetCopyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.manageCopiesUseCase.SetCopyStatus(c.Request.Context(), uint(copyID), req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ListCopies 列出书目的副本
// @Summary      副本清单
// @Tags         副本
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response{data=[]dto.CopyResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/copies [get]
func (h *CopyHandler) ListCopies(c *gin.Context) {
	result, err := h.manageCopiesUseCase.ListCopies(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	copies := make([]dto.CopyResponse, len(result))
	for i := range result {
		copies[i] = *toCopyResponse(&result[i])
	}
	response.Success(c, copies)
}

// GetCopyStats 书目副本统计
// @Summary      副本统计
// @Description  总数/可借/已借出
// @Tags         副本
// @Produce      json
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response{data=dto.CopyStatsResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/stats [get]
func (h *CopyHandler) GetCopyStats(c *gin.Context) {
	result, err := h.queryUseCase.CopyStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CopyStatsResponse{
		BookID:    result.BookID,
		Total:     result.Total,
		Available: result.Available,
		Borrowed:  result.Borrowed,
	})
}

// toCopyResponse 应用层DTO → HTTP响应
func toCopyResponse(c *catalog.CopyDTO) *dto.CopyResponse {
	return &dto.CopyResponse{
		ID:        c.ID,
		BookID:    c.BookID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
