package member

import "context"

// Repository 读者仓储接口
type Repository interface {
	// Create 新增读者，邮箱已存在返回ErrEmailDuplicate
	Create(ctx context.Context, m *Member) error

	// FindByID 按ID查询，不存在返回ErrMemberNotFound
	FindByID(ctx context.Context, id uint) (*Member, error)

	// FindByEmail 按邮箱查询，不存在返回ErrMemberNotFound
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// LockByID 按ID锁定并查询（FOR UPDATE，必须在事务内调用）
	// 借出事务用它串行化同一读者的并发借书请求，保证在借上限检查的原子性
	LockByID(ctx context.Context, id uint) (*Member, error)
}
