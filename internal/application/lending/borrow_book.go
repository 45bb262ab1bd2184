package lending

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// maxAllocateAttempts 副本分配重试次数
// CAS占用副本失败说明被并发请求抢走，换一个副本再试
const maxAllocateAttempts = 3

// BorrowBookUseCase 借书用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、业务规则校验
type BorrowBookUseCase struct {
	bookRepo       book.Repository
	copyRepo       copydomain.Repository
	loanRepo       loan.Repository
	memberRepo     member.Repository
	txManager      Transactor
	cache          AvailabilityCache
	events         EventPublisher
	maxActiveLoans int
	loanPeriod     time.Duration
}

// NewBorrowBookUseCase 创建借书用例
// maxActiveLoans/loanPeriod传0时使用领域默认值（3本/14天）
func NewBorrowBookUseCase(
	bookRepo book.Repository,
	copyRepo copydomain.Repository,
	loanRepo loan.Repository,
	memberRepo member.Repository,
	txManager Transactor,
	cache AvailabilityCache,
	events EventPublisher,
	maxActiveLoans int,
	loanPeriod time.Duration,
) *BorrowBookUseCase {
	if maxActiveLoans <= 0 {
		maxActiveLoans = loan.MaxActiveLoans
	}
	if loanPeriod <= 0 {
		loanPeriod = loan.LoanPeriod
	}
	return &BorrowBookUseCase{
		bookRepo:       bookRepo,
		copyRepo:       copyRepo,
		loanRepo:       loanRepo,
		memberRepo:     memberRepo,
		txManager:      txManager,
		cache:          cache,
		events:         events,
		maxActiveLoans: maxActiveLoans,
		loanPeriod:     loanPeriod,
	}
}

// BorrowBookRequest 借书请求DTO
type BorrowBookRequest struct {
	MemberID uint   // 读者ID(从JWT中提取)
	BookID   string // 图书编号
}

// BorrowBookResponse 借书响应DTO
type BorrowBookResponse struct {
	LoanNo     string `json:"loan_no"`
	BookID     string `json:"book_id"`
	BookTitle  string `json:"book_title"`
	CopyID     uint   `json:"copy_id"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
}

// Execute 执行借书用例
// 教学重点:防止超借的完整流程
//
// 核心问题1:在借上限被并发绕过
// 场景:读者已在借2本,上限3本,同时发起10个借书请求
// 错误实现:先COUNT再INSERT,10个请求都看到2<3,最后在借12本
// 正确实现:先SELECT FOR UPDATE锁定读者行,同一读者的请求在此排队,
//          COUNT和INSERT之间不会插入其他请求
//
// 核心问题2:同一副本被借给两个人
// 正确实现:占用副本走条件UPDATE(status='available'时才生效),
//          抢不到就换一个副本重试,重试耗尽返回冲突错误
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowBookRequest) (*BorrowBookResponse, error) {
	start := time.Now()
	if metrics.LoansInProgress != nil {
		metrics.LoansInProgress.Inc()
		defer metrics.LoansInProgress.Dec()
	}

	// 1. 参数校验
	if req.MemberID == 0 || req.BookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 2. 解析书目(只读,不需要在事务内)
	b, err := uc.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	// 3. 事务:锁读者行 → 检查上限 → 占用副本 → 写借阅记录
	var newLoan *loan.Loan
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:锁定读者行(悲观锁,串行化同一读者的并发借书)
		if _, err := uc.memberRepo.LockByID(txCtx, req.MemberID); err != nil {
			return err
		}

		// 步骤2:检查在借上限
		// 教学要点:必须在锁定后统计,否则并发请求都能通过检查
		count, err := uc.loanRepo.CountOpenByMember(txCtx, req.MemberID)
		if err != nil {
			return err
		}
		if count >= int64(uc.maxActiveLoans) {
			return loan.ErrBorrowLimitExceeded
		}

		// 步骤3:占用一个可借副本(CAS,抢不到换下一个)
		allocated, err := uc.allocateCopy(txCtx, b.ID)
		if err != nil {
			return err
		}

		// 步骤4:写借阅记录
		newLoan = loan.NewLoan(req.MemberID, allocated.ID, b.ID)
		newLoan.DueAt = newLoan.BorrowedAt.Add(uc.loanPeriod)
		return uc.loanRepo.Create(txCtx, newLoan)
	})

	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	// 4. 事务提交后:打指标、失效缓存、发布事件
	if metrics.BorrowsTotal != nil {
		metrics.BorrowsTotal.Inc()
		metrics.BorrowDuration.Observe(time.Since(start).Seconds())
	}
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, b.ID)
	}
	uc.publishCreated(ctx, newLoan)

	return &BorrowBookResponse{
		LoanNo:     newLoan.LoanNo,
		BookID:     b.ID,
		BookTitle:  b.Title,
		CopyID:     newLoan.CopyID,
		BorrowedAt: newLoan.BorrowedAt.Format(time.RFC3339),
		DueAt:      newLoan.DueAt.Format(time.RFC3339),
	}, nil
}

// allocateCopy 占用一个可借副本
// 查询和占用之间没有锁,靠条件UPDATE保证原子性;
// 占用失败说明副本被并发请求抢走,换一个重试
func (uc *BorrowBookUseCase) allocateCopy(ctx context.Context, bookID string) (*copydomain.Copy, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		c, err := uc.copyRepo.FindAvailableByBook(ctx, bookID)
		if err != nil {
			return nil, err
		}

		err = uc.copyRepo.MarkBorrowed(ctx, c.ID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, copydomain.ErrCopyNotAvailable) {
			return nil, err
		}
		// 副本被抢走,下一轮重新找
	}

	return nil, copydomain.ErrCopyNotAvailable
}

// publishCreated 发布借出事件(失败只记录,不影响主流程)
func (uc *BorrowBookUseCase) publishCreated(ctx context.Context, l *loan.Loan) {
	if uc.events == nil {
		return
	}
	event := LoanCreatedEvent{
		LoanNo:     l.LoanNo,
		MemberID:   l.MemberID,
		CopyID:     l.CopyID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
	}
	if err := uc.events.PublishLoanCreated(ctx, event); err != nil {
		log.Printf("发布借出事件失败: loan_no=%s, err=%v", l.LoanNo, err)
	}
}

// recordFailure 按失败原因打指标
func (uc *BorrowBookUseCase) recordFailure(err error) {
	if metrics.BorrowFailuresTotal == nil {
		return
	}

	reason := "other"
	if apperrors.IsAppError(err) {
		switch apperrors.GetAppError(err).Code {
		case apperrors.ErrCodeNoCopyAvailable, apperrors.ErrCodeCopyNotAvailable:
			reason = "no_copy"
		case apperrors.ErrCodeBorrowLimit:
			reason = "limit_exceeded"
		case apperrors.ErrCodeBookNotFound, apperrors.ErrCodeMemberNotFound:
			reason = "not_found"
		}
	}
	metrics.BorrowFailuresTotal.WithLabelValues(reason).Inc()
}
