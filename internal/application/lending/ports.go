package lending

import (
	"context"
	"time"

	copydomain "github.com/xiebiao/library/internal/domain/copy"
)

// Transactor 事务边界抽象
// 设计说明：
// 1. 用例只关心"这段逻辑要在一个事务里执行"，不关心事务由谁实现
// 2. mysql.TxManager实现此接口；单元测试注入直通的假事务器即可
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache 可用性统计缓存抽象
// 借出/归还成功后失效对应书目的统计；实现不抛错误，缓存故障不影响借还主流程
type AvailabilityCache interface {
	Invalidate(ctx context.Context, bookID string)
}

// StatsCache 可用性统计读写缓存抽象（查询侧read-through使用）
// GetStats未命中/故障时返回false，调用方回源数据库后用SetStats回填
type StatsCache interface {
	AvailabilityCache
	GetStats(ctx context.Context, bookID string) (*copydomain.Stats, bool)
	SetStats(ctx context.Context, bookID string, stats *copydomain.Stats)
}

// LoanCreatedEvent 借出成功事件
type LoanCreatedEvent struct {
	LoanNo     string    `json:"loan_no"`
	MemberID   uint      `json:"member_id"`
	CopyID     uint      `json:"copy_id"`
	BookID     string    `json:"book_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueAt      time.Time `json:"due_at"`
}

// LoanReturnedEvent 归还成功事件
type LoanReturnedEvent struct {
	LoanNo     string    `json:"loan_no"`
	MemberID   uint      `json:"member_id"`
	CopyID     uint      `json:"copy_id"`
	BookID     string    `json:"book_id"`
	ReturnedAt time.Time `json:"returned_at"`
	Overdue    bool      `json:"overdue"`
}

// EventPublisher 借阅事件发布抽象
// 事件在事务提交后发布；发布失败只记录，不回滚借还操作
type EventPublisher interface {
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishLoanReturned(ctx context.Context, event LoanReturnedEvent) error
}
