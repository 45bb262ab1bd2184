package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
// 目录维护(馆员)与目录浏览/检索(公开)
type BookHandler struct {
	createBookUseCase  *catalog.CreateBookUseCase
	updateBookUseCase  *catalog.UpdateBookUseCase
	deleteBookUseCase  *catalog.DeleteBookUseCase
	listBooksUseCase   *catalog.ListBooksUseCase
	searchBooksUseCase *catalog.SearchBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *catalog.CreateBookUseCase,
	updateBookUseCase *catalog.UpdateBookUseCase,
	deleteBookUseCase *catalog.DeleteBookUseCase,
	listBooksUseCase *catalog.ListBooksUseCase,
	searchBooksUseCase *catalog.SearchBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase:  createBookUseCase,
		updateBookUseCase:  updateBookUseCase,
		deleteBookUseCase:  deleteBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		searchBooksUseCase: searchBooksUseCase,
	}
}

// CreateBook 新增图书
// @Summary      新增图书
// @Description  馆员录入新书目,编号留空时系统生成
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "编号已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.createBookUseCase.Execute(c.Request.Context(), catalog.CreateBookRequest{
		ID:              req.ID,
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(result))
}

// GetBook 查询单本图书
// @Summary      查询图书详情
// @Tags         图书
// @Produce      json
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.listBooksUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(result))
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  部分更新:缺省字段不修改;一个字段都不传报参数错误
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书编号"
// @Param        request body dto.UpdateBookRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), catalog.UpdateBookRequest{
		ID:              c.Param("id"),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(result))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  存在未归还借阅时拒绝;允许时级联删除全部副本
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书编号"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      400 {object} response.Response "存在未归还借阅"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.deleteBookUseCase.Execute(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ListBooks 列出全部图书
// @Summary      图书列表
// @Description  按作者升序,同作者按书名升序
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.BookResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	result, err := h.listBooksUseCase.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	books := make([]dto.BookResponse, len(result))
	for i := range result {
		books[i] = *toBookResponse(&result[i])
	}
	response.Success(c, books)
}

// ListGenres 列出类别
// @Summary      类别列表
// @Description  馆藏中出现过的类别,去重升序
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]string}
// @Router       /api/v1/genres [get]
func (h *BookHandler) ListGenres(c *gin.Context) {
	genres, err := h.listBooksUseCase.ListGenres(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, genres)
}

// SearchBooks 检索图书
// @Summary      检索图书
// @Description  条件之间AND;检索词大小写不敏感子串匹配,类别精确匹配
// @Tags         图书
// @Produce      json
// @Param        term query string false "检索词"
// @Param        by_id query bool false "检索词只作用于编号"
// @Param        by_title query bool false "检索词只作用于书名"
// @Param        genre query string false "类别"
// @Param        sort_by query string false "id|title|author|genre|publicationYear"
// @Param        sort_order query string false "asc|desc"
// @Success      200 {object} response.Response{data=dto.SearchBooksResponse}
// @Failure      400 {object} response.Response "非法的排序字段/方向"
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.searchBooksUseCase.Execute(c.Request.Context(), catalog.SearchBooksRequest{
		Term:      req.Term,
		ByID:      req.ByID,
		ByTitle:   req.ByTitle,
		Genre:     req.Genre,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	books := make([]dto.BookResponse, len(result.Books))
	for i := range result.Books {
		books[i] = *toBookResponse(&result.Books[i])
	}
	response.Success(c, &dto.SearchBooksResponse{
		Books:      books,
		TotalCount: result.TotalCount,
		Term:       result.Term,
		Genre:      result.Genre,
		SortBy:     result.SortBy,
		SortOrder:  result.SortOrder,
	})
}

// toBookResponse 应用层DTO → HTTP响应
func toBookResponse(b *catalog.BookDTO) *dto.BookResponse {
	return &dto.BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
