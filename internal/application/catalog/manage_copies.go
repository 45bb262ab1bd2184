package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ManageCopiesUseCase 副本管理用例（馆员操作）
// 入库新副本、调整副本状态、查看书目的副本清单
type ManageCopiesUseCase struct {
	bookRepo book.Repository
	copyRepo copydomain.Repository
	cache    lending.AvailabilityCache
}

// NewManageCopiesUseCase 创建副本管理用例
func NewManageCopiesUseCase(
	bookRepo book.Repository,
	copyRepo copydomain.Repository,
	cache lending.AvailabilityCache,
) *ManageCopiesUseCase {
	return &ManageCopiesUseCase{
		bookRepo: bookRepo,
		copyRepo: copyRepo,
		cache:    cache,
	}
}

// CopyDTO 副本响应DTO
type CopyDTO struct {
	ID        uint   `json:"id"`
	BookID    string `json:"book_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AddCopy 为书目入库一个新副本（初始状态在馆可借）
func (uc *ManageCopiesUseCase) AddCopy(ctx context.Context, bookID string) (*CopyDTO, error) {
	if bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 书目必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	c := copydomain.NewCopy(bookID)
	if err := uc.copyRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, bookID)
	}
	return toCopyDTO(c), nil
}

// SetCopyStatus 调整副本状态（盘点/修复等管理操作）
// available/borrowed之间的切换只能走借还流程，这里会被状态机规则拦住；
// 借出中的副本要先归还才能标记damaged/lost之类的状态
func (uc *ManageCopiesUseCase) SetCopyStatus(ctx context.Context, copyID uint, status string) error {
	if copyID == 0 {
		return apperrors.ErrInvalidParams
	}

	target := copydomain.Status(status)
	if !target.IsValid() {
		return copydomain.ErrInvalidStatus
	}
	// 管理接口不允许直接把副本标记为借出，防止绕过借阅记录
	if target == copydomain.StatusBorrowed {
		return copydomain.ErrInvalidTransition
	}

	c, err := uc.copyRepo.FindByID(ctx, copyID)
	if err != nil {
		return err
	}

	if err := uc.copyRepo.UpdateStatus(ctx, copyID, target); err != nil {
		return err
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, c.BookID)
	}
	return nil
}

// ListCopies 列出书目的全部副本
func (uc *ManageCopiesUseCase) ListCopies(ctx context.Context, bookID string) ([]CopyDTO, error) {
	if bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 书目必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	copies, err := uc.copyRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	dtos := make([]CopyDTO, len(copies))
	for i, c := range copies {
		dtos[i] = *toCopyDTO(c)
	}
	return dtos, nil
}

// toCopyDTO 领域实体 → 响应DTO
func toCopyDTO(c *copydomain.Copy) *CopyDTO {
	return &CopyDTO{
		ID:        c.ID,
		BookID:    c.BookID,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
