package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ListBooksUseCase 图书浏览用例
// 单本查询、全量列表、类别列表
type ListBooksUseCase struct {
	bookRepo book.Repository
}

// NewListBooksUseCase 创建图书浏览用例
func NewListBooksUseCase(bookRepo book.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{bookRepo: bookRepo}
}

// Get 按编号查询单本图书
func (uc *ListBooksUseCase) Get(ctx context.Context, bookID string) (*BookDTO, error) {
	if bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toBookDTO(b), nil
}

// ListAll 列出全部图书（作者升序，同作者按书名升序）
func (uc *ListBooksUseCase) ListAll(ctx context.Context) ([]BookDTO, error) {
	books, err := uc.bookRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toBookDTOs(books), nil
}

// ListGenres 列出馆藏中出现过的类别（去重、升序）
func (uc *ListBooksUseCase) ListGenres(ctx context.Context) ([]string, error) {
	genres, err := uc.bookRepo.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}
