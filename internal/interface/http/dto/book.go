package dto

// CreateBookRequest HTTP新增图书请求
// validator tag说明:
// - required: 必填字段
// - max: 长度上限(与数据库列宽一致)
// - 年份区间等跨字段规则在领域服务中校验,这里只做格式层拦截
type CreateBookRequest struct {
	ID              string `json:"id" binding:"omitempty,max=64" example:"BK1699248000123456"` // 留空时系统生成
	Title           string `json:"title" binding:"required,max=255" example:"Go语言实战"`
	Author          string `json:"author" binding:"required,max=255" example:"威廉·肯尼迪"`
	ISBN            string `json:"isbn" binding:"omitempty,max=32" example:"9787115428028"`
	Genre           string `json:"genre" binding:"omitempty,max=64" example:"计算机"`
	PublicationYear int    `json:"publication_year" binding:"omitempty" example:"2017"`
	Description     string `json:"description" binding:"omitempty,max=2000" example:"一本关于Go语言的实战书籍"`
}

// UpdateBookRequest HTTP更新图书请求
// 指针字段:缺省表示不修改,显式传值表示改为该值
type UpdateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=255" example:"Go语言实战(第2版)"`
	Author          *string `json:"author" binding:"omitempty,max=255" example:"威廉·肯尼迪"`
	ISBN            *string `json:"isbn" binding:"omitempty,max=32" example:"9787115428028"`
	Genre           *string `json:"genre" binding:"omitempty,max=64" example:"计算机"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty" example:"2021"`
	Description     *string `json:"description" binding:"omitempty,max=2000" example:"修订版"`
}

// SearchBooksRequest HTTP检索请求(query参数)
// 排序字段/方向的白名单校验在领域层完成,非法值返回参数错误而不是静默回退
type SearchBooksRequest struct {
	Term      string `form:"term" binding:"omitempty,max=255" example:"go"`
	ByID      bool   `form:"by_id" example:"false"`    // 检索词只作用于图书编号
	ByTitle   bool   `form:"by_title" example:"false"` // 检索词只作用于书名
	Genre     string `form:"genre" binding:"omitempty,max=64" example:"计算机"`
	SortBy    string `form:"sort_by" binding:"omitempty" example:"title"`
	SortOrder string `form:"sort_order" binding:"omitempty" example:"asc"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID              string `json:"id" example:"BK1699248000123456"`
	Title           string `json:"title" example:"Go语言实战"`
	Author          string `json:"author" example:"威廉·肯尼迪"`
	ISBN            string `json:"isbn,omitempty" example:"9787115428028"`
	Genre           string `json:"genre,omitempty" example:"计算机"`
	PublicationYear int    `json:"publication_year,omitempty" example:"2017"`
	Description     string `json:"description,omitempty" example:"一本关于Go语言的实战书籍"`
	CreatedAt       string `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt       string `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// SearchBooksResponse HTTP检索响应
// 回显实际生效的检索条件(含填充的默认排序)
type SearchBooksResponse struct {
	Books      []BookResponse `json:"books"`
	TotalCount int            `json:"total_count" example:"2"`
	Term       string         `json:"term,omitempty" example:"go"`
	Genre      string         `json:"genre,omitempty" example:"计算机"`
	SortBy     string         `json:"sort_by" example:"title"`
	SortOrder  string         `json:"sort_order" example:"asc"`
}

// AddCopyRequest HTTP副本入库请求
type AddCopyRequest struct {
	BookID string `json:"book_id" binding:"required,max=64" example:"BK1699248000123456"`
}

// SetCopyStatusRequest HTTP副本状态调整请求
type SetCopyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available damaged lost reserved" example:"damaged"`
}

// CopyResponse HTTP副本响应
type CopyResponse struct {
	ID        uint   `json:"id" example:"1"`
	BookID    string `json:"book_id" example:"BK1699248000123456"`
	Status    string `json:"status" example:"available"`
	CreatedAt string `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt string `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// CopyStatsResponse HTTP副本统计响应
type CopyStatsResponse struct {
	BookID    string `json:"book_id" example:"BK1699248000123456"`
	Total     int64  `json:"total" example:"5"`
	Available int64  `json:"available" example:"3"`
	Borrowed  int64  `json:"borrowed" example:"2"`
}
