package member

import "time"

// 角色定义
const (
	// RoleMember 普通读者
	RoleMember = "member"

	// RoleAdmin 馆员（可维护书目、副本）
	RoleAdmin = "admin"
)

// Member 读者实体
type Member struct {
	ID        uint   // 读者ID（自增主键）
	Email     string // 邮箱（登录凭证，唯一）
	Password  string // 密码（bcrypt哈希，永不明文存储）
	Name      string // 姓名
	Role      string // member | admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember 创建读者（工厂方法）
// password必须是已经哈希过的密文，哈希在领域服务中完成
func NewMember(email, hashedPassword, name string) *Member {
	now := time.Now()
	return &Member{
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 判断是否馆员
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
