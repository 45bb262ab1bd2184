package copy

import "context"

// Repository 副本仓储接口
//
// 并发约定：MarkBorrowed / MarkAvailable 是条件更新（compare-and-set），
// 只有副本仍处于期望状态时更新才生效，借还事务据此防止同一副本被并发借出
type Repository interface {
	// Create 新增副本（初始状态available）
	Create(ctx context.Context, c *Copy) error

	// FindByID 按副本ID查询，不存在返回ErrCopyNotFound
	FindByID(ctx context.Context, id uint) (*Copy, error)

	// FindAvailableByBook 查询指定书目的任一可借副本
	// 没有可借副本时返回ErrNoCopyAvailable
	FindAvailableByBook(ctx context.Context, bookID string) (*Copy, error)

	// ListByBook 列出指定书目的全部副本
	ListByBook(ctx context.Context, bookID string) ([]*Copy, error)

	// LockByBook 锁定并列出指定书目的全部副本（FOR UPDATE，必须在事务内调用）
	// 删除书目前先锁定副本行，阻塞并发借出，拿到的状态才是可信的
	LockByBook(ctx context.Context, bookID string) ([]*Copy, error)

	// MarkBorrowed 将副本从available置为borrowed（条件更新）
	// 副本已不处于available时返回ErrCopyNotAvailable
	MarkBorrowed(ctx context.Context, id uint) error

	// MarkAvailable 将副本从borrowed置回available（条件更新）
	// 副本已不处于borrowed时返回ErrNoBorrowedCopy
	MarkAvailable(ctx context.Context, id uint) error

	// UpdateStatus 管理操作：直接设置副本状态
	// 非法状态返回ErrInvalidStatus，不允许的转移返回ErrInvalidTransition
	UpdateStatus(ctx context.Context, id uint, status Status) error

	// StatsForBook 统计指定书目的副本数量（总数/可借/已借出）
	// 书目没有任何副本时返回全零统计，不报错
	StatsForBook(ctx context.Context, bookID string) (*Stats, error)

	// CountAvailableByBook 统计指定书目的可借副本数
	CountAvailableByBook(ctx context.Context, bookID string) (int64, error)

	// DeleteByBook 删除指定书目的全部副本（删除书目时级联使用）
	DeleteByBook(ctx context.Context, bookID string) error
}
