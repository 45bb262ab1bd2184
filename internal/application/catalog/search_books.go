package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// SearchBooksUseCase 图书检索用例
type SearchBooksUseCase struct {
	bookRepo book.Repository
}

// NewSearchBooksUseCase 创建图书检索用例
func NewSearchBooksUseCase(bookRepo book.Repository) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookRepo: bookRepo}
}

// SearchBooksRequest 检索请求DTO
type SearchBooksRequest struct {
	Term      string // 检索词（大小写不敏感子串匹配）
	ByID      bool   // 检索词只作用于图书编号
	ByTitle   bool   // 检索词只作用于书名
	Genre     string // 类别精确过滤
	SortBy    string // id | title | author | genre | publicationYear
	SortOrder string // asc | desc
}

// SearchBooksResponse 检索响应DTO
// 回显实际生效的检索条件（含填充的默认排序），便于客户端构建翻页/排序链接
type SearchBooksResponse struct {
	Books      []BookDTO `json:"books"`
	TotalCount int       `json:"total_count"`
	Term       string    `json:"term,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	SortBy     string    `json:"sort_by"`
	SortOrder  string    `json:"sort_order"`
}

// Execute 执行检索
// 各条件之间AND；非法的排序字段/方向直接报错，不做静默回退
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (*SearchBooksResponse, error) {
	// 1. 规范化并校验检索条件
	query, err := book.SearchQuery{
		Term:      req.Term,
		ByID:      req.ByID,
		ByTitle:   req.ByTitle,
		Genre:     req.Genre,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}.Normalize()
	if err != nil {
		return nil, err
	}

	// 2. 执行查询
	books, err := uc.bookRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	return &SearchBooksResponse{
		Books:      toBookDTOs(books),
		TotalCount: len(books),
		Term:       query.Term,
		Genre:      query.Genre,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}, nil
}
