package dto

// BorrowBookRequest HTTP借书请求
type BorrowBookRequest struct {
	BookID string `json:"book_id" binding:"required,max=64" example:"BK1699248000123456"`
}

// ReturnBookRequest HTTP还书请求
// 二选一:loan_no按借阅单号归还,book_id按图书编号归还
// 两者都传时以loan_no为准,都不传报参数错误
type ReturnBookRequest struct {
	LoanNo string `json:"loan_no" binding:"omitempty,max=32" example:"LN1699248000123456"`
	BookID string `json:"book_id" binding:"omitempty,max=64" example:"BK1699248000123456"`
}

// LoanResponse HTTP借阅记录响应
type LoanResponse struct {
	LoanNo     string `json:"loan_no" example:"LN1699248000123456"`
	MemberID   uint   `json:"member_id" example:"42"`
	CopyID     uint   `json:"copy_id" example:"7"`
	BookID     string `json:"book_id" example:"BK1699248000123456"`
	BorrowedAt string `json:"borrowed_at" example:"2024-01-15T10:30:00Z"`
	DueAt      string `json:"due_at" example:"2024-01-29T10:30:00Z"`
	ReturnedAt string `json:"returned_at,omitempty" example:"2024-01-20T09:00:00Z"`
	Overdue    bool   `json:"overdue" example:"false"`
}

// BorrowBookResponse HTTP借书响应
type BorrowBookResponse struct {
	LoanNo     string `json:"loan_no" example:"LN1699248000123456"`
	BookID     string `json:"book_id" example:"BK1699248000123456"`
	BookTitle  string `json:"book_title" example:"Go语言实战"`
	CopyID     uint   `json:"copy_id" example:"7"`
	BorrowedAt string `json:"borrowed_at" example:"2024-01-15T10:30:00Z"`
	DueAt      string `json:"due_at" example:"2024-01-29T10:30:00Z"`
}

// ReturnBookResponse HTTP还书响应
type ReturnBookResponse struct {
	LoanNo     string `json:"loan_no" example:"LN1699248000123456"`
	BookID     string `json:"book_id" example:"BK1699248000123456"`
	CopyID     uint   `json:"copy_id" example:"7"`
	ReturnedAt string `json:"returned_at" example:"2024-01-20T09:00:00Z"`
	Overdue    bool   `json:"overdue" example:"false"`
}

// AvailabilityResponse HTTP可借性响应
type AvailabilityResponse struct {
	BookID    string `json:"book_id" example:"BK1699248000123456"`
	Available bool   `json:"available" example:"true"`
	Count     int64  `json:"count" example:"3"` // 可借副本数
}

// LoanHistoryRequest HTTP借阅历史请求(query参数)
type LoanHistoryRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
