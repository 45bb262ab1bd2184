// Package copy 馆藏副本聚合
//
// 副本与书目的关系：一个书目（book.Book）对应多个实体副本，
// 借出和归还操作的对象是副本，而不是书目本身。
package copy

import "time"

// Status 副本状态
type Status string

const (
	// StatusAvailable 在馆可借
	StatusAvailable Status = "available"

	// StatusBorrowed 已借出
	StatusBorrowed Status = "borrowed"

	// StatusDamaged 破损（下架修复中，不可借）
	StatusDamaged Status = "damaged"

	// StatusLost 丢失
	StatusLost Status = "lost"

	// StatusReserved 预留（馆内活动占用，不可外借）
	StatusReserved Status = "reserved"
)

// IsValid 判断状态值是否合法
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusDamaged, StatusLost, StatusReserved:
		return true
	}
	return false
}

// allowedTransitions 状态机定义
// 借还主流程只走 available <-> borrowed；
// 其余转移是馆员盘点/修复用的管理操作。
// borrowed只能回到available：借出中的副本对应一条未归还的借阅，
// 直接改成damaged/lost会让归还流程永远失败，借阅记录无法关闭
var allowedTransitions = map[Status][]Status{
	StatusAvailable: {StatusBorrowed, StatusDamaged, StatusLost, StatusReserved},
	StatusBorrowed:  {StatusAvailable},
	StatusDamaged:   {StatusAvailable, StatusLost},
	StatusLost:      {StatusAvailable},
	StatusReserved:  {StatusAvailable},
}

// CanTransition 判断状态转移是否合法
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Copy 馆藏副本实体
type Copy struct {
	ID        uint   // 副本ID（自增主键，条码号）
	BookID    string // 所属图书编号
	Status    Status // 当前状态
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCopy 创建新副本（初始状态为在馆可借）
func NewCopy(bookID string) *Copy {
	now := time.Now()
	return &Copy{
		BookID:    bookID,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanBorrow 判断副本当前是否可借出
func (c *Copy) CanBorrow() bool {
	return c.Status == StatusAvailable
}

// IsBorrowed 判断副本是否处于借出状态
func (c *Copy) IsBorrowed() bool {
	return c.Status == StatusBorrowed
}

// Stats 单个书目的副本统计
type Stats struct {
	Total     int64 // 副本总数（含不可借状态）
	Available int64 // 在馆可借数
	Borrowed  int64 // 已借出数
}
