package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在或已归还
	ErrLoanNotFound = apperrors.ErrLoanNotFound

	// ErrBorrowLimitExceeded 读者在借数已达上限
	ErrBorrowLimitExceeded = apperrors.New(apperrors.ErrCodeBorrowLimit, "在借图书已达上限")

	// ErrAlreadyReturned 借阅记录已归还，不能重复归还
	// 对外语义与记录不存在一致（归还接口只认进行中的借阅）
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录已归还")
)
