package copy

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 副本领域错误定义
var (
	// ErrCopyNotFound 副本不存在
	ErrCopyNotFound = apperrors.ErrCopyNotFound

	// ErrNoCopyAvailable 该书目当前没有可借副本
	ErrNoCopyAvailable = apperrors.New(apperrors.ErrCodeNoCopyAvailable, "该图书暂无可借副本")

	// ErrCopyNotAvailable 指定副本不处于可借状态（被并发请求抢先借走）
	ErrCopyNotAvailable = apperrors.New(apperrors.ErrCodeCopyNotAvailable, "该副本当前不可借出")

	// ErrNoBorrowedCopy 该书目没有处于借出状态的副本，无法归还
	ErrNoBorrowedCopy = apperrors.New(apperrors.ErrCodeNoBorrowedCopy, "该图书没有待归还的副本")

	// ErrInvalidStatus 非法的副本状态值
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的副本状态")

	// ErrInvalidTransition 不允许的状态转移
	ErrInvalidTransition = apperrors.New(apperrors.ErrCodeBusinessError, "不允许的副本状态转移")
)
