package lending

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// QueryUseCase 借阅查询用例
// 只读操作集合:在借数、在借列表、可借性、副本统计、借阅历史
type QueryUseCase struct {
	bookRepo book.Repository
	copyRepo copydomain.Repository
	loanRepo loan.Repository
	cache    StatsCache
}

// NewQueryUseCase 创建借阅查询用例
// cache传nil时所有统计直接回源数据库
func NewQueryUseCase(
	bookRepo book.Repository,
	copyRepo copydomain.Repository,
	loanRepo loan.Repository,
	cache StatsCache,
) *QueryUseCase {
	return &QueryUseCase{
		bookRepo: bookRepo,
		copyRepo: copyRepo,
		loanRepo: loanRepo,
		cache:    cache,
	}
}

// LoanDTO 借阅记录DTO
type LoanDTO struct {
	LoanNo     string `json:"loan_no"`
	MemberID   uint   `json:"member_id"`
	CopyID     uint   `json:"copy_id"`
	BookID     string `json:"book_id"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
	ReturnedAt string `json:"returned_at,omitempty"`
	Overdue    bool   `json:"overdue"`
}

// CopyStatsDTO 副本统计DTO
type CopyStatsDTO struct {
	BookID    string `json:"book_id"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Borrowed  int64  `json:"borrowed"`
}

// ActiveLoanCount 统计读者进行中的借阅数
func (uc *QueryUseCase) ActiveLoanCount(ctx context.Context, memberID uint) (int64, error) {
	if memberID == 0 {
		return 0, apperrors.ErrInvalidParams
	}
	return uc.loanRepo.CountOpenByMember(ctx, memberID)
}

// ActiveLoans 列出读者进行中的借阅（按借出时间升序）
func (uc *QueryUseCase) ActiveLoans(ctx context.Context, memberID uint) ([]LoanDTO, error) {
	if memberID == 0 {
		return nil, apperrors.ErrInvalidParams
	}

	loans, err := uc.loanRepo.ListOpenByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return toLoanDTOs(loans), nil
}

// IsAvailable 判断书目当前是否有可借副本
// 书目不存在时返回错误，而不是false（调用方能区分"没这本书"和"被借光了"）
func (uc *QueryUseCase) IsAvailable(ctx context.Context, bookID string) (bool, error) {
	stats, err := uc.CopyStats(ctx, bookID)
	if err != nil {
		return false, err
	}
	return stats.Available > 0, nil
}

// AvailableCopyCount 统计书目当前的可借副本数
func (uc *QueryUseCase) AvailableCopyCount(ctx context.Context, bookID string) (int64, error) {
	stats, err := uc.CopyStats(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return stats.Available, nil
}

// CopyStats 书目的副本统计(总数/可借/已借出)
// read-through缓存:命中直接返回,未命中回源数据库并回填
func (uc *QueryUseCase) CopyStats(ctx context.Context, bookID string) (*CopyStatsDTO, error) {
	if bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 1. 书目必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	// 2. 查缓存
	if uc.cache != nil {
		if stats, ok := uc.cache.GetStats(ctx, bookID); ok {
			return toStatsDTO(bookID, stats), nil
		}
	}

	// 3. 回源数据库并回填缓存
	stats, err := uc.copyRepo.StatsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.SetStats(ctx, bookID, stats)
	}

	return toStatsDTO(bookID, stats), nil
}

// OpenLoansForBook 列出书目进行中的借阅（馆员视角，按借出时间升序）
func (uc *QueryUseCase) OpenLoansForBook(ctx context.Context, bookID string) ([]LoanDTO, error) {
	if bookID == "" {
		return nil, apperrors.ErrInvalidParams
	}

	// 书目必须存在
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	loans, err := uc.loanRepo.ListOpenByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toLoanDTOs(loans), nil
}

// LoanHistory 分页查询读者的借阅历史（含已归还，按借出时间降序）
func (uc *QueryUseCase) LoanHistory(ctx context.Context, memberID uint, page, pageSize int) ([]LoanDTO, int64, error) {
	if memberID == 0 {
		return nil, 0, apperrors.ErrInvalidParams
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	loans, total, err := uc.loanRepo.ListByMember(ctx, memberID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toLoanDTOs(loans), total, nil
}

// =========================================
// 辅助函数:DTO转换
// =========================================

func toLoanDTO(l *loan.Loan) LoanDTO {
	dto := LoanDTO{
		LoanNo:     l.LoanNo,
		MemberID:   l.MemberID,
		CopyID:     l.CopyID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt.Format(time.RFC3339),
		DueAt:      l.DueAt.Format(time.RFC3339),
		Overdue:    l.IsOverdue(time.Now()),
	}
	if l.ReturnedAt != nil {
		dto.ReturnedAt = l.ReturnedAt.Format(time.RFC3339)
		dto.Overdue = l.ReturnedAt.After(l.DueAt)
	}
	return dto
}

func toLoanDTOs(loans []*loan.Loan) []LoanDTO {
	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = toLoanDTO(l)
	}
	return dtos
}

func toStatsDTO(bookID string, stats *copydomain.Stats) *CopyStatsDTO {
	return &CopyStatsDTO{
		BookID:    bookID,
		Total:     stats.Total,
		Available: stats.Available,
		Borrowed:  stats.Borrowed,
	}
}
