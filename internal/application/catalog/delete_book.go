package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
)

// DeleteBookUseCase 删除图书用例
// 删除策略:
// 1. 存在未归还借阅时拒绝删除(先收回所有副本)
// 2. 允许删除时级联删除全部副本
// 3. 历史借阅记录保留(审计需要),book_id变成悬挂引用是可接受的
type DeleteBookUseCase struct {
	bookRepo  book.Repository
	copyRepo  copydomain.Repository
	loanRepo  loan.Repository
	txManager Transactor
	cache     lending.AvailabilityCache
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(
	bookRepo book.Repository,
	copyRepo copydomain.Repository,
	loanRepo loan.Repository,
	txManager Transactor,
	cache lending.AvailabilityCache,
) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookRepo:  bookRepo,
		copyRepo:  copyRepo,
		loanRepo:  loanRepo,
		txManager: txManager,
		cache:     cache,
	}
}

// Execute 执行删除
// 先对书目的副本行加锁(FOR UPDATE)再检查:
// 并发借出的条件UPDATE会被行锁阻塞,锁后读到的副本状态是可信的,
// 普通MVCC读做在借检查会漏掉检查和删除之间提交的借出
func (uc *DeleteBookUseCase) Execute(ctx context.Context, bookID string) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:图书必须存在
		if _, err := uc.bookRepo.FindByID(txCtx, bookID); err != nil {
			return err
		}

		// 步骤2:锁定副本行,存在借出中的副本时拒绝删除
		copies, err := uc.copyRepo.LockByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		for _, c := range copies {
			if c.IsBorrowed() {
				return book.ErrBookHasOpenLoans
			}
		}

		// 步骤3:存在未归还借阅时拒绝删除
		openCount, err := uc.loanRepo.CountOpenByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		if openCount > 0 {
			return book.ErrBookHasOpenLoans
		}

		// 步骤4:级联删除副本
		if err := uc.copyRepo.DeleteByBook(txCtx, bookID); err != nil {
			return err
		}

		// 步骤5:删除书目
		return uc.bookRepo.Delete(txCtx, bookID)
	})
	if err != nil {
		return err
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, bookID)
	}
	return nil
}
