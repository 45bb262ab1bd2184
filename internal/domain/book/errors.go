package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrDuplicateBookID 图书编号重复（创建时编号已被占用）
	ErrDuplicateBookID = apperrors.New(apperrors.ErrCodeDuplicateBookID, "图书编号已存在")

	// ErrBookHasOpenLoans 图书尚有未归还的借阅记录，禁止删除
	ErrBookHasOpenLoans = apperrors.New(apperrors.ErrCodeBookHasOpenLoans, "图书存在未归还的借阅记录，无法删除")

	// ErrInvalidBook 图书字段校验失败
	ErrInvalidBook = apperrors.New(apperrors.ErrCodeInvalidParams, "图书信息不合法")

	// ErrEmptyUpdate 更新请求未提供任何字段
	ErrEmptyUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "更新请求至少需要提供一个字段")

	// ErrInvalidSortKey 非法的排序字段
	ErrInvalidSortKey = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的排序字段")

	// ErrInvalidSortOrder 非法的排序方向
	ErrInvalidSortOrder = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的排序方向，只支持 asc/desc")
)
