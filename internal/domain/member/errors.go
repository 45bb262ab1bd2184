package member

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 读者领域错误定义
var (
	// ErrMemberNotFound 读者不存在
	ErrMemberNotFound = apperrors.ErrMemberNotFound

	// ErrEmailDuplicate 邮箱已注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.ErrWeakPassword

	// ErrInvalidPassword 密码错误
	ErrInvalidPassword = apperrors.ErrInvalidPassword

	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不合法")

	// ErrInvalidName 姓名不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名不能为空")
)
