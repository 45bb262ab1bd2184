package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
)

type returnFixture struct {
	*borrowFixture
	returnUC *ReturnBookUseCase
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	f := newBorrowFixture()
	f.memberRepo.members[2] = &member.Member{ID: 2, Email: "bob@example.com", Name: "Bob", Role: member.RoleMember}
	return &returnFixture{
		borrowFixture: f,
		returnUC:      NewReturnBookUseCase(f.loanRepo, f.copyRepo, fakeTxManager{}, f.cache, f.events),
	}
}

// borrow 借一本书作为测试前置条件
func (f *returnFixture) borrow(t *testing.T, memberID uint, bookID string) *BorrowBookResponse {
	t.Helper()
	resp, err := f.uc.Execute(context.Background(), BorrowBookRequest{MemberID: memberID, BookID: bookID})
	if err != nil {
		t.Fatalf("前置借书失败: %v", err)
	}
	return resp
}

// TestReturnBook_ByLoanNo 测试按借阅单号归还
func TestReturnBook_ByLoanNo(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)
	borrowed := f.borrow(t, 1, "BK001")

	resp, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, borrowed.LoanNo)
	if err != nil {
		t.Fatalf("期望归还成功，实际失败: %v", err)
	}
	if resp.LoanNo != borrowed.LoanNo || resp.BookID != "BK001" {
		t.Errorf("归还响应不正确: %+v", resp)
	}
	if resp.Overdue {
		t.Error("按期归还不应该标记逾期")
	}

	// 副本回到在馆状态
	c, _ := f.copyRepo.FindByID(context.Background(), resp.CopyID)
	if c.Status != copydomain.StatusAvailable {
		t.Errorf("归还后副本期望状态为available，实际%s", c.Status)
	}

	// 借阅记录关闭
	l, _ := f.loanRepo.FindByLoanNo(context.Background(), borrowed.LoanNo)
	if l.IsOpen() {
		t.Error("归还后借阅记录应该关闭")
	}

	// 归还事件
	if len(f.events.returned) != 1 || f.events.returned[0].LoanNo != borrowed.LoanNo {
		t.Errorf("期望发布1条归还事件，实际%v", f.events.returned)
	}
}

// TestReturnBook_AlreadyReturned 测试重复归还
func TestReturnBook_AlreadyReturned(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)
	borrowed := f.borrow(t, 1, "BK001")

	if _, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, borrowed.LoanNo); err != nil {
		t.Fatalf("第1次归还失败: %v", err)
	}

	_, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, borrowed.LoanNo)
	if !errors.Is(err, loan.ErrAlreadyReturned) {
		t.Fatalf("重复归还期望ErrAlreadyReturned，实际%v", err)
	}

	// 副本状态不应该被改坏
	c, _ := f.copyRepo.FindByID(context.Background(), borrowed.CopyID)
	if c.Status != copydomain.StatusAvailable {
		t.Errorf("重复归还后副本期望仍为available，实际%s", c.Status)
	}
}

// TestReturnBook_WrongMember 测试归还他人的借阅
// 对外统一报"记录不存在"，不泄露他人单号的存在性
func TestReturnBook_WrongMember(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)
	borrowed := f.borrow(t, 1, "BK001")

	_, err := f.returnUC.ExecuteByLoanNo(context.Background(), 2, borrowed.LoanNo)
	if !errors.Is(err, loan.ErrLoanNotFound) {
		t.Fatalf("归还他人借阅期望ErrLoanNotFound，实际%v", err)
	}
}

// TestReturnBook_LoanNotFound 测试单号不存在
func TestReturnBook_LoanNotFound(t *testing.T) {
	f := newReturnFixture(t)

	_, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, "LN0000000000000000")
	if !errors.Is(err, loan.ErrLoanNotFound) {
		t.Fatalf("期望ErrLoanNotFound，实际%v", err)
	}
}

// TestReturnBook_ByBook 测试按图书编号归还（先借先还）
func TestReturnBook_ByBook(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 2)

	first := f.borrow(t, 1, "BK001")
	// 拉开借出时间，保证归还顺序可判定
	l1, _ := f.loanRepo.FindByLoanNo(context.Background(), first.LoanNo)
	l1.BorrowedAt = l1.BorrowedAt.Add(-time.Hour)
	second := f.borrow(t, 1, "BK001")

	resp, err := f.returnUC.ExecuteByBook(context.Background(), 1, "BK001")
	if err != nil {
		t.Fatalf("期望归还成功，实际失败: %v", err)
	}
	if resp.LoanNo != first.LoanNo {
		t.Errorf("期望归还最早的借阅%s，实际%s", first.LoanNo, resp.LoanNo)
	}

	// 第二笔仍在进行中
	l2, _ := f.loanRepo.FindByLoanNo(context.Background(), second.LoanNo)
	if !l2.IsOpen() {
		t.Error("后借的记录不应该被归还")
	}
}

// TestReturnBook_ByBook_NoBorrowedCopy 测试按书归还但没有在借记录
func TestReturnBook_ByBook_NoBorrowedCopy(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)

	_, err := f.returnUC.ExecuteByBook(context.Background(), 1, "BK001")
	if !errors.Is(err, copydomain.ErrNoBorrowedCopy) {
		t.Fatalf("期望ErrNoBorrowedCopy，实际%v", err)
	}

	// 别的读者在借，不算自己的
	f.borrow(t, 1, "BK001")
	_, err = f.returnUC.ExecuteByBook(context.Background(), 2, "BK001")
	if !errors.Is(err, copydomain.ErrNoBorrowedCopy) {
		t.Fatalf("他人在借时期望ErrNoBorrowedCopy，实际%v", err)
	}
}

// TestReturnBook_Overdue 测试逾期归还标记
func TestReturnBook_Overdue(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)
	borrowed := f.borrow(t, 1, "BK001")

	// 把应还时间改到过去，模拟逾期
	l, _ := f.loanRepo.FindByLoanNo(context.Background(), borrowed.LoanNo)
	l.DueAt = time.Now().UTC().Add(-time.Hour)

	resp, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, borrowed.LoanNo)
	if err != nil {
		t.Fatalf("期望归还成功，实际失败: %v", err)
	}
	if !resp.Overdue {
		t.Error("超过应还时间归还应该标记逾期")
	}
	if len(f.events.returned) != 1 || !f.events.returned[0].Overdue {
		t.Errorf("归还事件应该携带逾期标记，实际%v", f.events.returned)
	}
}

// TestReturnBook_CycleRestoresAvailability 测试借还后书目恢复可借
func TestReturnBook_CycleRestoresAvailability(t *testing.T) {
	f := newReturnFixture(t)
	f.copyRepo.addCopies("BK001", 1)
	queryUC := NewQueryUseCase(f.bookRepo, f.copyRepo, f.loanRepo, nil)

	borrowed := f.borrow(t, 1, "BK001")
	if ok, _ := queryUC.IsAvailable(context.Background(), "BK001"); ok {
		t.Error("唯一副本借出后书目不应该可借")
	}

	if _, err := f.returnUC.ExecuteByLoanNo(context.Background(), 1, borrowed.LoanNo); err != nil {
		t.Fatalf("归还失败: %v", err)
	}
	if ok, _ := queryUC.IsAvailable(context.Background(), "BK001"); !ok {
		t.Error("归还后书目应该恢复可借")
	}
}
