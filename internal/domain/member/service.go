package member

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bcryptCost bcrypt计算成本
// 12在安全性和登录延迟之间取得平衡（约250ms），默认的10偏弱
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service 读者领域服务
// 密码哈希、凭证校验等规则放在领域服务，应用层用例只做编排
type Service struct{}

// NewService 创建读者领域服务
func NewService() *Service {
	return &Service{}
}

// ValidateRegistration 校验注册信息并构造读者实体（密码已哈希）
func (s *Service) ValidateRegistration(email, password, name string) (*Member, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := s.validatePasswordStrength(password); err != nil {
		return nil, err
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return NewMember(email, hashed, name), nil
}

// HashPassword 哈希密码
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码哈希失败")
	}
	return string(hashed), nil
}

// VerifyPassword 校验密码
// 错误密码统一返回ErrInvalidPassword，不泄露更多细节
func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// validatePasswordStrength 密码强度规则：至少8位，同时包含字母和数字
func (s *Service) validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword.WithMessage("密码至少需要8位")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword.WithMessage("密码必须同时包含字母和数字")
	}
	return nil
}
