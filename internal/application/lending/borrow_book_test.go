package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type borrowFixture struct {
	bookRepo   *fakeBookRepo
	copyRepo   *fakeCopyRepo
	loanRepo   *fakeLoanRepo
	memberRepo *fakeMemberRepo
	cache      *fakeStatsCache
	events     *fakeEventPublisher
	uc         *BorrowBookUseCase
}

func newBorrowFixture() *borrowFixture {
	f := &borrowFixture{
		bookRepo:   newFakeBookRepo(book.NewBook("BK001", "Go程序设计语言", "Alan Donovan", "", "计算机", 2017, "")),
		copyRepo:   newFakeCopyRepo(),
		loanRepo:   newFakeLoanRepo(),
		memberRepo: newFakeMemberRepo(&member.Member{ID: 1, Email: "alice@example.com", Name: "Alice", Role: member.RoleMember}),
		cache:      newFakeStatsCache(),
		events:     &fakeEventPublisher{},
	}
	f.uc = NewBorrowBookUseCase(
		f.bookRepo, f.copyRepo, f.loanRepo, f.memberRepo,
		fakeTxManager{}, f.cache, f.events, 0, 0,
	)
	return f
}

// TestBorrowBook_Success 测试借书成功的完整链路
func TestBorrowBook_Success(t *testing.T) {
	f := newBorrowFixture()
	copyIDs := f.copyRepo.addCopies("BK001", 2)

	resp, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}

	// 响应字段
	if resp.BookID != "BK001" || resp.BookTitle != "Go程序设计语言" {
		t.Errorf("响应书目信息不正确: %+v", resp)
	}
	if resp.CopyID != copyIDs[0] {
		t.Errorf("期望分配ID最小的可借副本%d，实际%d", copyIDs[0], resp.CopyID)
	}

	// 应还时间=借出时间+14天
	borrowedAt, _ := time.Parse(time.RFC3339, resp.BorrowedAt)
	dueAt, _ := time.Parse(time.RFC3339, resp.DueAt)
	if got := dueAt.Sub(borrowedAt); got != loan.LoanPeriod {
		t.Errorf("期望借期14天，实际%v", got)
	}

	// 副本被置为borrowed
	c, _ := f.copyRepo.FindByID(context.Background(), resp.CopyID)
	if c.Status != copydomain.StatusBorrowed {
		t.Errorf("借出后副本期望状态为borrowed，实际%s", c.Status)
	}

	// 借阅记录落库、缓存失效、事件发布
	if count, _ := f.loanRepo.CountOpenByMember(context.Background(), 1); count != 1 {
		t.Errorf("期望1条进行中借阅，实际%d", count)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "BK001" {
		t.Errorf("期望失效BK001的缓存，实际%v", f.cache.invalidated)
	}
	if len(f.events.created) != 1 || f.events.created[0].LoanNo != resp.LoanNo {
		t.Errorf("期望发布1条借出事件，实际%v", f.events.created)
	}
}

// TestBorrowBook_LimitExceeded 测试在借上限
func TestBorrowBook_LimitExceeded(t *testing.T) {
	f := newBorrowFixture()
	f.copyRepo.addCopies("BK001", 5)

	// 借满3本
	for i := 0; i < loan.MaxActiveLoans; i++ {
		if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"}); err != nil {
			t.Fatalf("第%d次借书应该成功: %v", i+1, err)
		}
	}

	// 第4次被拒
	_, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if !errors.Is(err, loan.ErrBorrowLimitExceeded) {
		t.Fatalf("期望ErrBorrowLimitExceeded，实际%v", err)
	}

	// 失败的请求不应该占用副本
	if count, _ := f.copyRepo.CountAvailableByBook(context.Background(), "BK001"); count != 2 {
		t.Errorf("期望剩余2本可借，实际%d", count)
	}

	// 归还一本后恢复可借
	open, _ := f.loanRepo.ListOpenByMember(context.Background(), 1)
	returnUC := NewReturnBookUseCase(f.loanRepo, f.copyRepo, fakeTxManager{}, f.cache, f.events)
	if _, err := returnUC.ExecuteByLoanNo(context.Background(), 1, open[0].LoanNo); err != nil {
		t.Fatalf("归还失败: %v", err)
	}
	if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"}); err != nil {
		t.Errorf("归还后再借应该成功，实际失败: %v", err)
	}
}

// TestBorrowBook_NoCopyAvailable 测试无可借副本
func TestBorrowBook_NoCopyAvailable(t *testing.T) {
	f := newBorrowFixture()

	// 书目存在但没有任何副本
	_, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if !errors.Is(err, copydomain.ErrNoCopyAvailable) {
		t.Fatalf("期望ErrNoCopyAvailable，实际%v", err)
	}

	// 仅有的副本已借出
	ids := f.copyRepo.addCopies("BK001", 1)
	_ = f.copyRepo.MarkBorrowed(context.Background(), ids[0])
	_, err = f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if !errors.Is(err, copydomain.ErrNoCopyAvailable) {
		t.Fatalf("副本全部借出时期望ErrNoCopyAvailable，实际%v", err)
	}
}

// TestBorrowBook_BookNotFound 测试书目不存在
func TestBorrowBook_BookNotFound(t *testing.T) {
	f := newBorrowFixture()

	_, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK999"})
	if !errors.Is(err, book.ErrBookNotFound) {
		t.Fatalf("期望ErrBookNotFound，实际%v", err)
	}
}

// TestBorrowBook_InvalidParams 测试参数校验
func TestBorrowBook_InvalidParams(t *testing.T) {
	f := newBorrowFixture()

	if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 0, BookID: "BK001"}); !errors.Is(err, apperrors.ErrInvalidParams) {
		t.Errorf("读者ID为0期望ErrInvalidParams，实际%v", err)
	}
	if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: ""}); !errors.Is(err, apperrors.ErrInvalidParams) {
		t.Errorf("图书编号为空期望ErrInvalidParams，实际%v", err)
	}
}

// TestBorrowBook_AllocateRetry 测试副本被并发抢走后的重试
func TestBorrowBook_AllocateRetry(t *testing.T) {
	f := newBorrowFixture()
	f.copyRepo.addCopies("BK001", 3)

	// 前2次占用失败（副本被抢），第3次应该成功
	f.copyRepo.markBorrowedConflicts = 2
	if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"}); err != nil {
		t.Fatalf("重试后应该借到副本，实际失败: %v", err)
	}
}

// TestBorrowBook_AllocateRetryExhausted 测试重试耗尽
func TestBorrowBook_AllocateRetryExhausted(t *testing.T) {
	f := newBorrowFixture()
	f.copyRepo.addCopies("BK001", 5)

	f.copyRepo.markBorrowedConflicts = maxAllocateAttempts
	_, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if !errors.Is(err, copydomain.ErrCopyNotAvailable) {
		t.Fatalf("重试耗尽期望ErrCopyNotAvailable，实际%v", err)
	}
}

// TestBorrowBook_CustomLimit 测试配置覆盖借阅上限
func TestBorrowBook_CustomLimit(t *testing.T) {
	f := newBorrowFixture()
	f.copyRepo.addCopies("BK001", 3)
	uc := NewBorrowBookUseCase(
		f.bookRepo, f.copyRepo, f.loanRepo, f.memberRepo,
		fakeTxManager{}, f.cache, f.events, 1, 7*24*time.Hour,
	)

	if _, err := uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"}); err != nil {
		t.Fatalf("第1次借书应该成功: %v", err)
	}
	_, err := uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"})
	if !errors.Is(err, loan.ErrBorrowLimitExceeded) {
		t.Fatalf("上限1时第2次借书期望ErrBorrowLimitExceeded，实际%v", err)
	}
}

// TestBorrowBook_PublishFailureDoesNotFail 测试事件发布失败不影响借书
func TestBorrowBook_PublishFailureDoesNotFail(t *testing.T) {
	f := newBorrowFixture()
	f.copyRepo.addCopies("BK001", 1)
	f.events.err = errors.New("rabbitmq down")

	if _, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: 1, BookID: "BK001"}); err != nil {
		t.Fatalf("事件发布失败不应该影响借书主流程: %v", err)
	}
}
