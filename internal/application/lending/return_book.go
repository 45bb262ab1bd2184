package lending

import (
	"context"
	"errors"
	"log"
	"time"

	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// ReturnBookUseCase 还书用例
// 支持两种归还方式:
// 1. 按借阅单号归还(扫借书凭条)
// 2. 按图书编号归还(读者只带了书):归还该读者对这本书最早的在借记录
type ReturnBookUseCase struct {
	loanRepo  loan.Repository
	copyRepo  copydomain.Repository
	txManager Transactor
	cache     AvailabilityCache
	events    EventPublisher
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	loanRepo loan.Repository,
	copyRepo copydomain.Repository,
	txManager Transactor,
	cache AvailabilityCache,
	events EventPublisher,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		loanRepo:  loanRepo,
		copyRepo:  copyRepo,
		txManager: txManager,
		cache:     cache,
		events:    events,
	}
}

// ReturnBookResponse 还书响应DTO
type ReturnBookResponse struct {
	LoanNo     string `json:"loan_no"`
	BookID     string `json:"book_id"`
	CopyID     uint   `json:"copy_id"`
	ReturnedAt string `json:"returned_at"`
	Overdue    bool   `json:"overdue"`
}

// ExecuteByLoanNo 按借阅单号归还
// 教学重点:防止重复归还
// 场景:同一单号的归还请求并发到达(双击、重试)
// 正确实现:先SELECT FOR UPDATE锁定借阅行,后到的请求会看到
// returned_at已写入,返回"已归还"错误,副本状态不会被改坏
func (uc *ReturnBookUseCase) ExecuteByLoanNo(ctx context.Context, memberID uint, loanNo string) (*ReturnBookResponse, error) {
	if memberID == 0 || loanNo == "" {
		return nil, apperrors.ErrInvalidParams
	}

	return uc.execute(ctx, func(txCtx context.Context) (*loan.Loan, error) {
		// 锁定借阅行
		l, err := uc.loanRepo.LockByLoanNo(txCtx, loanNo)
		if err != nil {
			return nil, err
		}
		// 只能归还自己的借阅;对外统一报"记录不存在",不泄露他人单号
		if l.MemberID != memberID {
			return nil, loan.ErrLoanNotFound
		}
		return l, nil
	})
}

// ExecuteByBook 按图书编号归还
// 归还该读者对这本书最早的在借记录(先借先还)
func (uc *ReturnBookUseCase) ExecuteByBook(ctx context.Context, memberID uint, bookID string) (*ReturnBookResponse, error) {
	if memberID == 0 || bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	return uc.execute(ctx, func(txCtx context.Context) (*loan.Loan, error) {
		l, err := uc.loanRepo.LockOpenByMemberAndBook(txCtx, memberID, bookID)
		if err != nil {
			// 按书归还找不到在借记录时,语义是"没有待归还的副本"
			if errors.Is(err, loan.ErrLoanNotFound) {
				return nil, copydomain.ErrNoBorrowedCopy
			}
			return nil, err
		}
		return l, nil
	})
}

// execute 归还流程骨架
// resolve负责在事务内锁定待归还的借阅记录
func (uc *ReturnBookUseCase) execute(ctx context.Context, resolve func(txCtx context.Context) (*loan.Loan, error)) (*ReturnBookResponse, error) {
	if metrics.LoansInProgress != nil {
		metrics.LoansInProgress.Inc()
		defer metrics.LoansInProgress.Dec()
	}

	var returned *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:锁定借阅记录
		l, err := resolve(txCtx)
		if err != nil {
			return err
		}

		// 步骤2:拒绝重复归还
		if !l.IsOpen() {
			return loan.ErrAlreadyReturned
		}

		// 步骤3:写归还时间
		l.MarkReturned(time.Now())
		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		// 步骤4:副本回到在馆状态(条件UPDATE)
		if err := uc.copyRepo.MarkAvailable(txCtx, l.CopyID); err != nil {
			return err
		}

		returned = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 事务提交后:打指标、失效缓存、发布事件
	if metrics.ReturnsTotal != nil {
		metrics.ReturnsTotal.Inc()
	}
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, returned.BookID)
	}
	uc.publishReturned(ctx, returned)

	return &ReturnBookResponse{
		LoanNo:     returned.LoanNo,
		BookID:     returned.BookID,
		CopyID:     returned.CopyID,
		ReturnedAt: returned.ReturnedAt.Format(time.RFC3339),
		Overdue:    returned.ReturnedAt.After(returned.DueAt),
	}, nil
}

// publishReturned 发布归还事件(失败只记录,不影响主流程)
func (uc *ReturnBookUseCase) publishReturned(ctx context.Context, l *loan.Loan) {
	if uc.events == nil {
		return
	}
	event := LoanReturnedEvent{
		LoanNo:     l.LoanNo,
		MemberID:   l.MemberID,
		CopyID:     l.CopyID,
		BookID:     l.BookID,
		ReturnedAt: *l.ReturnedAt,
		Overdue:    l.ReturnedAt.After(l.DueAt),
	}
	if err := uc.events.PublishLoanReturned(ctx, event); err != nil {
		log.Printf("发布归还事件失败: loan_no=%s, err=%v", l.LoanNo, err)
	}
}
