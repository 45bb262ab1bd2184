package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

// Transactor 事务边界抽象（实现见mysql.TxManager）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateBookUseCase 新增图书用例
type CreateBookUseCase struct {
	bookRepo    book.Repository
	bookService *book.Service
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(bookRepo book.Repository, bookService *book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookRepo:    bookRepo,
		bookService: bookService,
	}
}

// CreateBookRequest 新增图书请求DTO
type CreateBookRequest struct {
	ID              string // 图书编号（留空时系统生成）
	Title           string
	Author          string
	ISBN            string
	Genre           string
	PublicationYear int
	Description     string
}

// BookDTO 图书响应DTO
type BookDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn,omitempty"`
	Genre           string `json:"genre,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Execute 执行新增图书
// 编号唯一性由数据库唯一索引保证:并发创建同一编号时,
// 后到的INSERT报唯一索引冲突,转换为"编号已存在"业务错误
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookDTO, error) {
	// 1. 领域校验(trim、必填、长度、年份区间)
	b, err := uc.bookService.ValidateNew(
		req.ID, req.Title, req.Author, req.ISBN,
		req.Genre, req.PublicationYear, req.Description,
	)
	if err != nil {
		return nil, err
	}

	// 2. 持久化
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	return toBookDTO(b), nil
}

// toBookDTO 领域实体 → 响应DTO
func toBookDTO(b *book.Book) *BookDTO {
	return &BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}

func toBookDTOs(books []*book.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i, b := range books {
		dtos[i] = *toBookDTO(b)
	}
	return dtos
}
