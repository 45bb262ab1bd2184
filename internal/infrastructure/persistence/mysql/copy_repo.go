package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	copydomain "github.com/xiebiao/library/internal/domain/copy"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// copyRepository 副本仓储实现(MySQL)
// 并发设计(借还核心):
// 1. MarkBorrowed/MarkAvailable走条件UPDATE:
//    UPDATE copies SET status='borrowed' WHERE id=? AND status='available'
//    RowsAffected=0说明状态已被并发请求改走,转换为业务错误
// 2. 条件UPDATE本身是原子的,副本状态不需要额外的行锁
type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository 创建副本仓储
func NewCopyRepository(db *gorm.DB) copydomain.Repository {
	return &copyRepository{db: db}
}

// Create 创建副本
func (r *copyRepository) Create(ctx context.Context, c *copydomain.Copy) error {
	model := &CopyModel{
		BookID: c.BookID,
		Status: string(c.Status),
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建副本失败")
	}

	// 回填自增ID
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找副本
func (r *copyRepository) FindByID(ctx context.Context, id uint) (*copydomain.Copy, error) {
	var model CopyModel
	db := r.getDB(ctx)
	err := db.First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, copydomain.ErrCopyNotFound
		}
		return nil, apperrors.Wrap(err, "查询副本失败")
	}

	return toCopyEntity(&model), nil
}

// FindAvailableByBook 查找指定书目的任一可借副本
// 按ID升序取最早入库的副本（先进先出，均匀磨损）
func (r *copyRepository) FindAvailableByBook(ctx context.Context, bookID string) (*copydomain.Copy, error) {
	var model CopyModel
	db := r.getDB(ctx)
	err := db.Where("book_id = ? AND status = ?", bookID, string(copydomain.StatusAvailable)).
		Order("id ASC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, copydomain.ErrNoCopyAvailable
		}
		return nil, apperrors.Wrap(err, "查询可借副本失败")
	}

	return toCopyEntity(&model), nil
}

// ListByBook 列出指定书目的全部副本
func (r *copyRepository) ListByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	var models []CopyModel
	db := r.getDB(ctx)
	err := db.Where("book_id = ?", bookID).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询副本列表失败")
	}

	copies := make([]*copydomain.Copy, len(models))
	for i := range models {
		copies[i] = toCopyEntity(&models[i])
	}
	return copies, nil
}

// LockByBook 锁定并列出指定书目的全部副本
// SELECT ... FOR UPDATE：并发借出的条件UPDATE会被行锁阻塞到本事务结束
func (r *copyRepository) LockByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	var models []CopyModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("book_id = ?", bookID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定副本失败")
	}

	copies := make([]*copydomain.Copy, len(models))
	for i := range models {
		copies[i] = toCopyEntity(&models[i])
	}
	return copies, nil
}

// MarkBorrowed 将副本置为借出（条件更新）
func (r *copyRepository) MarkBorrowed(ctx context.Context, id uint) error {
	return r.compareAndSetStatus(ctx, id,
		copydomain.StatusAvailable, copydomain.StatusBorrowed,
		copydomain.ErrCopyNotAvailable)
}

// MarkAvailable 将副本置回在馆（条件更新）
func (r *copyRepository) MarkAvailable(ctx context.Context, id uint) error {
	return r.compareAndSetStatus(ctx, id,
		copydomain.StatusBorrowed, copydomain.StatusAvailable,
		copydomain.ErrNoBorrowedCopy)
}

// compareAndSetStatus 条件状态更新
// UPDATE copies SET status=to WHERE id=? AND status=from
// RowsAffected=0时区分"副本不存在"与"状态已变"，返回对应业务错误
func (r *copyRepository) compareAndSetStatus(ctx context.Context, id uint, from, to copydomain.Status, conflictErr error) error {
	db := r.getDB(ctx)
	result := db.Model(&CopyModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本状态失败")
	}

	if result.RowsAffected == 0 {
		// 可能是副本不存在，或者状态已被并发请求改走，再查一次确定原因
		var model CopyModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return copydomain.ErrCopyNotFound
			}
			return apperrors.Wrap(err, "查询副本失败")
		}
		return conflictErr
	}

	return nil
}

// UpdateStatus 管理操作：直接设置副本状态
// 先校验目标状态与转移合法性，再做条件UPDATE防止并发下非法转移
func (r *copyRepository) UpdateStatus(ctx context.Context, id uint, status copydomain.Status) error {
	if !status.IsValid() {
		return copydomain.ErrInvalidStatus
	}

	db := r.getDB(ctx)
	var model CopyModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return copydomain.ErrCopyNotFound
		}
		return apperrors.Wrap(err, "查询副本失败")
	}

	from := copydomain.Status(model.Status)
	if from == status {
		return nil // 幂等：状态已是目标值
	}
	if !copydomain.CanTransition(from, status) {
		return copydomain.ErrInvalidTransition
	}

	result := db.Model(&CopyModel{}).
		Where("id = ? AND status = ?", id, model.Status).
		Update("status", string(status))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本状态失败")
	}
	if result.RowsAffected == 0 {
		return copydomain.ErrInvalidTransition
	}

	return nil
}

// StatsForBook 统计指定书目的副本数量
// 一次GROUP BY查询拿到各状态计数，书目没有副本时返回全零
func (r *copyRepository) StatsForBook(ctx context.Context, bookID string) (*copydomain.Stats, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	db := r.getDB(ctx)
	err := db.Model(&CopyModel{}).
		Select("status, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计副本失败")
	}

	stats := &copydomain.Stats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch copydomain.Status(row.Status) {
		case copydomain.StatusAvailable:
			stats.Available = row.Count
		case copydomain.StatusBorrowed:
			stats.Borrowed = row.Count
		}
	}

	return stats, nil
}

// CountAvailableByBook 统计指定书目的可借副本数
func (r *copyRepository) CountAvailableByBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	db := r.getDB(ctx)
	err := db.Model(&CopyModel{}).
		Where("book_id = ? AND status = ?", bookID, string(copydomain.StatusAvailable)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计可借副本失败")
	}

	return count, nil
}

// DeleteByBook 删除指定书目的全部副本
func (r *copyRepository) DeleteByBook(ctx context.Context, bookID string) error {
	db := r.getDB(ctx)
	if err := db.Where("book_id = ?", bookID).Delete(&CopyModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除副本失败")
	}
	return nil
}

// toCopyEntity GORM模型 → 领域实体
func toCopyEntity(model *CopyModel) *copydomain.Copy {
	return &copydomain.Copy{
		ID:        model.ID,
		BookID:    model.BookID,
		Status:    copydomain.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *copyRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
