package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// UpdateBookUseCase 更新图书用例
type UpdateBookUseCase struct {
	bookRepo    book.Repository
	bookService *book.Service
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookRepo book.Repository, bookService *book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookRepo:    bookRepo,
		bookService: bookService,
	}
}

// UpdateBookRequest 更新图书请求DTO
// 指针字段:nil表示不修改,非nil表示改为该值
type UpdateBookRequest struct {
	ID              string
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	PublicationYear *int
	Description     *string
}

// Execute 执行部分更新
// 空更新(一个字段都没提供)按非法参数处理
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDTO, error) {
	fields := book.UpdateFields{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
	}

	// 1. 领域校验
	if err := uc.bookService.ValidateUpdate(fields); err != nil {
		return nil, err
	}

	// 2. 读取-应用-保存
	b, err := uc.bookRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	b.Apply(fields)

	if err := uc.bookRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	return toBookDTO(b), nil
}
