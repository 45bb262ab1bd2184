// Package loan 借阅记录聚合
//
// 借阅记录是借出动作的凭证：谁在什么时间借走了哪个副本、应还日期、
// 以及实际归还时间。归还时间为空表示借阅仍在进行中。
package loan

import "time"

// 借阅规则常量
const (
	// MaxActiveLoans 单个读者同时在借的上限
	MaxActiveLoans = 3

	// LoanPeriod 借阅期限
	LoanPeriod = 14 * 24 * time.Hour
)

// Loan 借阅记录实体
type Loan struct {
	ID         uint       // 自增主键
	LoanNo     string     // 借阅单号（业务主键，如 LN1699248000123456）
	MemberID   uint       // 读者ID
	CopyID     uint       // 借出的副本ID
	BookID     string     // 所属图书编号（冗余存储，按书查询时省去join）
	BorrowedAt time.Time  // 借出时间
	DueAt      time.Time  // 应还时间（借出时间+借期）
	ReturnedAt *time.Time // 实际归还时间（nil表示未归还）
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLoan 创建借阅记录（工厂方法）
// 借出时间取当前UTC时间，应还时间=借出时间+LoanPeriod
func NewLoan(memberID uint, copyID uint, bookID string) *Loan {
	now := time.Now().UTC()
	return &Loan{
		LoanNo:     GenerateLoanNo(),
		MemberID:   memberID,
		CopyID:     copyID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.Add(LoanPeriod),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOpen 判断借阅是否仍在进行中
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// IsOverdue 判断借阅是否已逾期（进行中且超过应还时间）
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && now.After(l.DueAt)
}

// MarkReturned 标记归还
// 幂等性由调用方保证：已归还的记录不允许再次归还
func (l *Loan) MarkReturned(at time.Time) {
	at = at.UTC()
	l.ReturnedAt = &at
	l.UpdatedAt = at
}
