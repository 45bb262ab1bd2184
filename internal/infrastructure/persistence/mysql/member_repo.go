package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/member"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// memberRepository 读者仓储实现(MySQL)
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建读者仓储
func NewMemberRepository(db *gorm.DB) member.Repository {
	return &memberRepository{db: db}
}

// Create 创建读者
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := &MemberModel{
		Email:    m.Email,
		Password: m.Password,
		Name:     m.Name,
		Role:     m.Role,
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		// 检查是否为邮箱重复错误
		if isDuplicateError(err) {
			return member.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建读者失败")
	}

	// 回填自增ID
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找读者
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	db := r.getDB(ctx)
	err := db.First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(err, "查询读者失败")
	}

	return toMemberEntity(&model), nil
}

// FindByEmail 根据邮箱查找读者
func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	var model MemberModel
	db := r.getDB(ctx)
	err := db.Where("email = ?", email).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(err, "查询读者失败")
	}

	return toMemberEntity(&model), nil
}

// LockByID 锁定并查询读者(SELECT FOR UPDATE)
// 教学要点:
// 1. 必须在事务内调用
// 2. 借出事务先锁读者行,同一读者的并发借书请求在此排队,
//    在借上限检查和副本占用因此是原子的
func (r *memberRepository) LockByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound
		}
		return nil, apperrors.Wrap(err, "锁定读者失败")
	}

	return toMemberEntity(&model), nil
}

// toMemberEntity GORM模型 → 领域实体
func toMemberEntity(model *MemberModel) *member.Member {
	return &member.Member{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Name:      model.Name,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *memberRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
