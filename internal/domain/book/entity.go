package book

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book描述一个书目(title),不代表具体哪一本实体书;
//    实体书由copy聚合管理,每个书目可有多个馆藏副本
// 2. ID是业务编号(馆藏号),可由馆员指定,也可由系统生成;
//    唯一性由创建操作+数据库唯一索引双重保证
// 3. 领域实体不带GORM tag,持久化映射由infrastructure层负责
type Book struct {
	ID              string // 图书编号(业务主键,如 BK1699248000123456)
	Title           string // 书名
	Author          string // 作者
	ISBN            string // ISBN号(可选)
	Genre           string // 类别(可选,写入时trim,检索按精确匹配)
	PublicationYear int    // 出版年份(0表示未知)
	Description     string // 图书简介
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 调用方(领域服务)负责先完成字段校验;id为空时自动生成编号
func NewBook(id, title, author, isbn, genre string, publicationYear int, description string) *Book {
	if id == "" {
		id = GenerateBookID()
	}
	now := time.Now()
	return &Book{
		ID:              id,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Genre:           genre,
		PublicationYear: publicationYear,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UpdateFields 部分更新字段集
// 指针语义:nil表示"不修改",非nil表示"改为该值"(允许改为空串清空可选字段)
type UpdateFields struct {
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	PublicationYear *int
	Description     *string
}

// IsEmpty 判断是否为空更新(一个字段都没提供)
func (f UpdateFields) IsEmpty() bool {
	return f.Title == nil && f.Author == nil && f.ISBN == nil &&
		f.Genre == nil && f.PublicationYear == nil && f.Description == nil
}

// Apply 应用部分更新(领域行为)
// 只有提供的字段会变更;字符串字段写入前统一trim
func (b *Book) Apply(f UpdateFields) {
	if f.Title != nil {
		b.Title = strings.TrimSpace(*f.Title)
	}
	if f.Author != nil {
		b.Author = strings.TrimSpace(*f.Author)
	}
	if f.ISBN != nil {
		b.ISBN = strings.TrimSpace(*f.ISBN)
	}
	if f.Genre != nil {
		b.Genre = strings.TrimSpace(*f.Genre)
	}
	if f.PublicationYear != nil {
		b.PublicationYear = *f.PublicationYear
	}
	if f.Description != nil {
		b.Description = strings.TrimSpace(*f.Description)
	}
	b.UpdatedAt = time.Now()
}

// GenerateBookID 生成图书编号
// 格式:BK + 时间戳(秒) + 6位随机数,如 BK1699248000123456
// 编号设计原则:全局唯一、时间有序、不可预测
func GenerateBookID() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000)
	return fmt.Sprintf("BK%d%06d", timestamp, random)
}
