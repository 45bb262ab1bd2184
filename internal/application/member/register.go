package member

import (
	"context"

	"github.com/xiebiao/library/internal/domain/member"
)

// RegisterUseCase 读者注册用例
// 设计说明：
// 1. Application层负责用例编排，业务规则在领域服务中
// 2. 当前注册用例比较简单：校验 → 哈希密码 → 落库
type RegisterUseCase struct {
	memberRepo    member.Repository
	memberService *member.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(memberRepo member.Repository, memberService *member.Service) *RegisterUseCase {
	return &RegisterUseCase{
		memberRepo:    memberRepo,
		memberService: memberService,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// RegisterResponse 注册响应
// 不返回密码字段（安全考虑）
type RegisterResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Execute 执行注册
// 邮箱唯一性由数据库唯一索引保证，并发注册同一邮箱时后到的报重复错误
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	// 1. 领域校验 + 密码哈希
	m, err := uc.memberService.ValidateRegistration(req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}

	// 2. 持久化
	if err := uc.memberRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	return &RegisterResponse{
		ID:    m.ID,
		Email: m.Email,
		Name:  m.Name,
		Role:  m.Role,
	}, nil
}
