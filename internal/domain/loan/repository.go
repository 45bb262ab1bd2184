package loan

import "context"

// Repository 借阅记录仓储接口
//
// 并发约定：带Lock前缀的方法在事务内执行 SELECT ... FOR UPDATE，
// 归还流程先锁定借阅行，防止同一笔借阅被并发归还两次
type Repository interface {
	// Create 新增借阅记录
	Create(ctx context.Context, l *Loan) error

	// Update 保存借阅记录变更（归还时写ReturnedAt）
	Update(ctx context.Context, l *Loan) error

	// FindByLoanNo 按借阅单号查询，不存在返回ErrLoanNotFound
	FindByLoanNo(ctx context.Context, loanNo string) (*Loan, error)

	// LockByLoanNo 按借阅单号锁定并查询（FOR UPDATE，必须在事务内调用）
	LockByLoanNo(ctx context.Context, loanNo string) (*Loan, error)

	// LockOpenByMemberAndBook 锁定并查询读者对某书目最早的进行中借阅
	// 没有进行中的借阅时返回ErrLoanNotFound
	LockOpenByMemberAndBook(ctx context.Context, memberID uint, bookID string) (*Loan, error)

	// CountOpenByMember 统计读者进行中的借阅数
	CountOpenByMember(ctx context.Context, memberID uint) (int64, error)

	// CountOpenByBook 统计某书目进行中的借阅数（删除书目前检查）
	CountOpenByBook(ctx context.Context, bookID string) (int64, error)

	// ListOpenByMember 列出读者进行中的借阅（按借出时间升序）
	ListOpenByMember(ctx context.Context, memberID uint) ([]*Loan, error)

	// ListOpenByBook 列出某书目进行中的借阅（按借出时间升序）
	ListOpenByBook(ctx context.Context, bookID string) ([]*Loan, error)

	// ListByMember 分页列出读者的借阅历史（含已归还，按借出时间降序）
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*Loan, int64, error)
}
