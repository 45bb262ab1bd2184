package book

import "strings"

// 排序字段白名单
// 白名单之外的值一律拒绝，不做静默回退，也防止拼接进SQL
const (
	SortByID              = "id"
	SortByTitle           = "title"
	SortByAuthor          = "author"
	SortByGenre           = "genre"
	SortByPublicationYear = "publicationYear"
)

// 排序方向
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var validSortKeys = map[string]bool{
	SortByID:              true,
	SortByTitle:           true,
	SortByAuthor:          true,
	SortByGenre:           true,
	SortByPublicationYear: true,
}

// SearchQuery 图书检索条件
// 语义说明：
// 1. 所有条件之间是AND关系，未提供的条件不参与过滤
// 2. Term是大小写不敏感的子串匹配:
//    - ByID=true:    只匹配图书编号
//    - ByTitle=true: 只匹配书名
//    - 都为false:    匹配所有文本字段（编号/书名/作者/类别/简介）
//    - 同时为true:   非法（作用域互斥）
// 3. Genre是大小写敏感的精确匹配（不是子串）
// 4. SortBy/SortOrder为空时使用默认排序（id asc）
type SearchQuery struct {
	Term      string // 检索词（空串表示不过滤）
	ByID      bool   // 检索词只作用于图书编号
	ByTitle   bool   // 检索词只作用于书名
	Genre     string // 类别精确过滤（空串表示不过滤）
	SortBy    string // 排序字段（见白名单常量）
	SortOrder string // asc | desc
}

// Normalize 规范化并校验检索条件
// 返回填好默认值的副本；非法条件返回InvalidParams类错误
func (q SearchQuery) Normalize() (SearchQuery, error) {
	q.Term = strings.TrimSpace(q.Term)
	q.Genre = strings.TrimSpace(q.Genre)
	q.SortBy = strings.TrimSpace(q.SortBy)
	q.SortOrder = strings.TrimSpace(q.SortOrder)

	// 1. 检索作用域互斥
	if q.ByID && q.ByTitle {
		return q, ErrInvalidBook.WithMessage("byId 与 byTitle 不能同时指定")
	}

	// 2. 排序字段白名单
	if q.SortBy == "" {
		q.SortBy = SortByID
	} else if !validSortKeys[q.SortBy] {
		return q, ErrInvalidSortKey
	}

	// 3. 排序方向
	switch q.SortOrder {
	case "":
		q.SortOrder = SortAsc
	case SortAsc, SortDesc:
	default:
		return q, ErrInvalidSortOrder
	}

	return q, nil
}
