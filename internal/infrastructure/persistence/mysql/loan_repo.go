package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅记录仓储实现(MySQL)
// 设计说明:
// 1. "进行中"的判断统一用 returned_at IS NULL
// 2. Lock前缀方法用SELECT FOR UPDATE,必须在事务内调用,
//    归还流程靠它防止同一笔借阅被并发归还两次
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅记录仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := toLoanModel(l)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			// 借阅单号冲突（时间戳+随机数撞号），概率极低，直接报内部错误由调用方重试
			return apperrors.Wrap(err, "借阅单号冲突")
		}
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	// 回填自增ID
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt

	return nil
}

// Update 保存借阅记录变更（归还时写returned_at）
func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	db := r.getDB(ctx)
	result := db.Model(&LoanModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"returned_at": l.ReturnedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}

	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

// FindByLoanNo 根据借阅单号查找
func (r *loanRepository) FindByLoanNo(ctx context.Context, loanNo string) (*loan.Loan, error) {
	var model LoanModel
	db := r.getDB(ctx)
	err := db.Where("loan_no = ?", loanNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toLoanEntity(&model), nil
}

// LockByLoanNo 锁定并查询借阅记录(SELECT FOR UPDATE)
// 教学要点:必须在事务内调用,getDB(ctx)拿到的才是事务DB
func (r *loanRepository) LockByLoanNo(ctx context.Context, loanNo string) (*loan.Loan, error) {
	var model LoanModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_no = ?", loanNo).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅记录失败")
	}

	return toLoanEntity(&model), nil
}

// LockOpenByMemberAndBook 锁定读者对某书目最早的进行中借阅
// 按书归还时选最早借出的那笔（先借先还）
func (r *loanRepository) LockOpenByMemberAndBook(ctx context.Context, memberID uint, bookID string) (*loan.Loan, error) {
	var model LoanModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND book_id = ? AND returned_at IS NULL", memberID, bookID).
		Order("borrowed_at ASC, id ASC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅记录失败")
	}

	return toLoanEntity(&model), nil
}

// CountOpenByMember 统计读者进行中的借阅数
func (r *loanRepository) CountOpenByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	db := r.getDB(ctx)
	err := db.Model(&LoanModel{}).
		Where("member_id = ? AND returned_at IS NULL", memberID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计在借数失败")
	}

	return count, nil
}

// CountOpenByBook 统计某书目进行中的借阅数
func (r *loanRepository) CountOpenByBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	db := r.getDB(ctx)
	err := db.Model(&LoanModel{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计在借数失败")
	}

	return count, nil
}

// ListOpenByMember 列出读者进行中的借阅
func (r *loanRepository) ListOpenByMember(ctx context.Context, memberID uint) ([]*loan.Loan, error) {
	var models []LoanModel
	db := r.getDB(ctx)
	err := db.Where("member_id = ? AND returned_at IS NULL", memberID).
		Order("borrowed_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询在借记录失败")
	}

	return toLoanEntities(models), nil
}

// ListOpenByBook 列出某书目进行中的借阅
func (r *loanRepository) ListOpenByBook(ctx context.Context, bookID string) ([]*loan.Loan, error) {
	var models []LoanModel
	db := r.getDB(ctx)
	err := db.Where("book_id = ? AND returned_at IS NULL", bookID).
		Order("borrowed_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询在借记录失败")
	}

	return toLoanEntities(models), nil
}

// ListByMember 分页列出读者的借阅历史（含已归还）
func (r *loanRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*loan.Loan, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&LoanModel{}).Where("member_id = ?", memberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计借阅历史失败")
	}

	var models []LoanModel
	err := query.Order("borrowed_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅历史失败")
	}

	return toLoanEntities(models), total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toLoanModel 领域实体 → GORM模型
func toLoanModel(l *loan.Loan) *LoanModel {
	return &LoanModel{
		ID:         l.ID,
		LoanNo:     l.LoanNo,
		MemberID:   l.MemberID,
		CopyID:     l.CopyID,
		BookID:     l.BookID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
	}
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *LoanModel) *loan.Loan {
	return &loan.Loan{
		ID:         model.ID,
		LoanNo:     model.LoanNo,
		MemberID:   model.MemberID,
		CopyID:     model.CopyID,
		BookID:     model.BookID,
		BorrowedAt: model.BorrowedAt,
		DueAt:      model.DueAt,
		ReturnedAt: model.ReturnedAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toLoanEntities(models []LoanModel) []*loan.Loan {
	loans := make([]*loan.Loan, len(models))
	for i := range models {
		loans[i] = toLoanEntity(&models[i])
	}
	return loans
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
