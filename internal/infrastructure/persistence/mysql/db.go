package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	// 借阅时间按UTC存储（应还时间跨时区计算必须一致）
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&MemberModel{},
		&BookModel{},
		&CopyModel{},
		&LoanModel{},
	)
}

// MemberModel GORM读者模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/member/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type MemberModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Name      string    `gorm:"size:50;not null;comment:姓名"`
	Role      string    `gorm:"size:20;not null;default:member;comment:角色(member/admin)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (MemberModel) TableName() string {
	return "members"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 主键是字符串业务编号（馆藏号），由馆员指定或系统生成
// 2. 作者+书名复合索引服务默认列表排序
// 3. 类别索引服务类别精确过滤
type BookModel struct {
	ID              string    `gorm:"primaryKey;size:64;comment:图书编号"`
	Title           string    `gorm:"index:idx_author_title,priority:2;size:255;not null;comment:书名"`
	Author          string    `gorm:"index:idx_author_title,priority:1;size:255;not null;comment:作者"`
	ISBN            string    `gorm:"size:32;comment:ISBN号"`
	Genre           string    `gorm:"index;size:64;comment:类别"`
	PublicationYear int       `gorm:"comment:出版年份(0表示未知)"`
	Description     string    `gorm:"type:text;comment:图书简介"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// CopyModel GORM馆藏副本模型
// 教学要点:
// 1. 自增ID即副本条码号
// 2. book_id+status复合索引服务"找一本可借副本"的查询
// 3. 状态变更走条件UPDATE（见copy_repo.go），不依赖内存状态
type CopyModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    string    `gorm:"index:idx_book_status,priority:1;size:64;not null;comment:图书编号"`
	Status    string    `gorm:"index:idx_book_status,priority:2;size:20;not null;default:available;comment:副本状态"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CopyModel) TableName() string {
	return "copies"
}

// LoanModel GORM借阅记录模型
// 教学要点:
// 1. LoanNo有唯一索引（业务主键）
// 2. returned_at为NULL表示进行中，member_id+returned_at复合索引
//    服务在借数统计（借出事务的热点查询）
// 3. book_id冗余存储，按书查询借阅时省去join副本表
type LoanModel struct {
	ID         uint       `gorm:"primaryKey"`
	LoanNo     string     `gorm:"uniqueIndex;size:32;not null;comment:借阅单号"`
	MemberID   uint       `gorm:"index:idx_member_open,priority:1;not null;comment:读者ID"`
	CopyID     uint       `gorm:"index;not null;comment:副本ID"`
	BookID     string     `gorm:"index:idx_book_open,priority:1;size:64;not null;comment:图书编号"`
	BorrowedAt time.Time  `gorm:"not null;comment:借出时间"`
	DueAt      time.Time  `gorm:"not null;comment:应还时间"`
	ReturnedAt *time.Time `gorm:"index:idx_member_open,priority:2;index:idx_book_open,priority:2;comment:归还时间(NULL=未归还)"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}
