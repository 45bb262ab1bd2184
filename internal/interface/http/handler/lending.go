package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LendingHandler 借还HTTP处理器
type LendingHandler struct {
	borrowBookUseCase *lending.BorrowBookUseCase
	returnBookUseCase *lending.ReturnBookUseCase
	queryUseCase      *lending.QueryUseCase
}

// NewLendingHandler 创建借还处理器
func NewLendingHandler(
	borrowBookUseCase *lending.BorrowBookUseCase,
	returnBookUseCase *lending.ReturnBookUseCase,
	queryUseCase *lending.QueryUseCase,
) *LendingHandler {
	return &LendingHandler{
		borrowBookUseCase: borrowBookUseCase,
		returnBookUseCase: returnBookUseCase,
		queryUseCase:      queryUseCase,
	}
}

// BorrowBook 借书
// @Summary      借书
// @Description  为当前读者借出一本图书的任一可借副本
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowBookRequest true "要借的图书"
// @Success      200 {object} response.Response{data=dto.BorrowBookResponse}
// @Failure      400 {object} response.Response "在借已达上限/暂无可借副本"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/loans [post]
func (h *LendingHandler) BorrowBook(c *gin.Context) {
	var req dto.BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	memberID := middleware.MustGetMemberID(c)

	result, err := h.borrowBookUseCase.Execute(c.Request.Context(), lending.BorrowBookRequest{
		MemberID: memberID,
		BookID:   req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BorrowBookResponse{
		LoanNo:     result.LoanNo,
		BookID:     result.BookID,
		BookTitle:  result.BookTitle,
		CopyID:     result.CopyID,
		BorrowedAt: result.BorrowedAt,
		DueAt:      result.DueAt,
	})
}

// ReturnBook 还书
// @Summary      还书
// @Description  按借阅单号或图书编号归还;按图书编号时归还最早的在借记录
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReturnBookRequest true "归还方式"
// @Success      200 {object} response.Response{data=dto.ReturnBookResponse}
// @Failure      400 {object} response.Response "参数错误/没有待归还的副本"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/return [post]
func (h *LendingHandler) ReturnBook(c *gin.Context) {
	var req dto.ReturnBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	memberID := middleware.MustGetMemberID(c)

	var result *lending.ReturnBookResponse
	var err error
	switch {
	case req.LoanNo != "":
		result, err = h.returnBookUseCase.ExecuteByLoanNo(c.Request.Context(), memberID, req.LoanNo)
	case req.BookID != "":
		result, err = h.returnBookUseCase.ExecuteByBook(c.Request.Context(), memberID, req.BookID)
	default:
		response.ErrorWithCode(c, 40900, "loan_no和book_id至少提供一个")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ReturnBookResponse{
		LoanNo:     result.LoanNo,
		BookID:     result.BookID,
		CopyID:     result.CopyID,
		ReturnedAt: result.ReturnedAt,
		Overdue:    result.Overdue,
	})
}

// ListActiveLoans 当前读者的在借列表
// @Summary      在借列表
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/active [get]
func (h *LendingHandler) ListActiveLoans(c *gin.Context) {
	memberID := middleware.MustGetMemberID(c)

	result, err := h.queryUseCase.ActiveLoans(c.Request.Context(), memberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanResponses(result))
}

// GetActiveLoanCount 当前读者的在借数
// @Summary      在借数
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=object}
// @Router       /api/v1/loans/active/count [get]
func (h *LendingHandler) GetActiveLoanCount(c *gin.Context) {
	memberID := middleware.MustGetMemberID(c)

	count, err := h.queryUseCase.ActiveLoanCount(c.Request.Context(), memberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// ListLoanHistory 当前读者的借阅历史(分页)
// @Summary      借阅历史
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页条数"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/loans/history [get]
func (h *LendingHandler) ListLoanHistory(c *gin.Context) {
	var req dto.LoanHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	memberID := middleware.MustGetMemberID(c)

	loans, total, err := h.queryUseCase.LoanHistory(c.Request.Context(), memberID, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, toLoanResponses(loans), total, req.Page, req.PageSize)
}

// GetAvailability 书目可借性
// @Summary      可借性查询
// @Description  书目是否有可借副本及可借数
// @Tags         借阅
// @Produce      json
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response{data=dto.AvailabilityResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/availability [get]
func (h *LendingHandler) GetAvailability(c *gin.Context) {
	bookID := c.Param("id")

	count, err := h.queryUseCase.AvailableCopyCount(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.AvailabilityResponse{
		BookID:    bookID,
		Available: count > 0,
		Count:     count,
	})
}

// ListOpenLoansForBook 书目的在借记录(馆员)
// @Summary      书目在借记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/loans [get]
func (h *LendingHandler) ListOpenLoansForBook(c *gin.Context) {
	result, err := h.queryUseCase.OpenLoansForBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanResponses(result))
}

// toLoanResponses 应用层DTO → HTTP响应
func toLoanResponses(loans []lending.LoanDTO) []dto.LoanResponse {
	result := make([]dto.LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = dto.LoanResponse{
			LoanNo:     l.LoanNo,
			MemberID:   l.MemberID,
			CopyID:     l.CopyID,
			BookID:     l.BookID,
			BorrowedAt: l.BorrowedAt,
			DueAt:      l.DueAt,
			ReturnedAt: l.ReturnedAt,
			Overdue:    l.Overdue,
		}
	}
	return result
}
