package member

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
)

// LoginUseCase 读者登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis（失败不影响登录）
type LoginUseCase struct {
	memberRepo    member.Repository
	memberService *member.Service
	jwtManager    *jwt.Manager
	sessionStore  *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	memberRepo member.Repository,
	memberService *member.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		memberRepo:    memberRepo,
		memberService: memberService,
		jwtManager:    jwtManager,
		sessionStore:  sessionStore,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Member       MemberInfo `json:"member"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"` // Access Token过期时间（秒）
}

// MemberInfo 读者信息
type MemberInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Execute 执行登录
// 安全要点："邮箱不存在"和"密码错误"对外统一报密码错误，不给撞库者提示
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 查找读者
	m, err := uc.memberRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return nil, member.ErrInvalidPassword
		}
		return nil, err
	}

	// 2. 验证密码
	if err := uc.memberService.VerifyPassword(m.Password, req.Password); err != nil {
		return nil, err
	}

	// 3. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(m.ID, m.Email, m.Role)
	if err != nil {
		return nil, err
	}

	// 4. 保存会话到Redis（会话有效期 = Refresh Token有效期）
	if uc.sessionStore != nil {
		sessionData := map[string]interface{}{
			"member_id": m.ID,
			"email":     m.Email,
			"role":      m.Role,
			"login_at":  time.Now().Unix(),
		}
		if err := uc.sessionStore.SaveSession(ctx, m.ID, sessionData, uc.jwtManager.RefreshTokenExpire()); err != nil {
			// 会话保存失败不影响登录，只记录日志
			log.Printf("保存会话失败: member_id=%d, err=%v", m.ID, err)
		}
	}

	return &LoginResponse{
		Member: MemberInfo{
			ID:    m.ID,
			Email: m.Email,
			Name:  m.Name,
			Role:  m.Role,
		},
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 读者登出用例
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{
		sessionStore: sessionStore,
		jwtManager:   jwtManager,
	}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, memberID uint, accessToken string) error {
	if uc.sessionStore == nil {
		return nil
	}

	// 1. 删除会话
	if err := uc.sessionStore.DeleteSession(ctx, memberID); err != nil {
		return err
	}

	// 2. 将Access Token加入黑名单（防止Token在过期前继续使用）
	// 黑名单TTL = Access Token剩余最长有效期
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenExpire())
}
