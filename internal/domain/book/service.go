package book

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 字段长度上限（与数据库列宽保持一致）
const (
	maxIDLength          = 64
	maxTitleLength       = 255
	maxAuthorLength      = 255
	maxISBNLength        = 32
	maxGenreLength       = 64
	maxDescriptionLength = 2000

	// minPublicationYear 古登堡印刷术之后才有现代意义上的出版年份
	minPublicationYear = 1450
)

// Service 图书领域服务
// 教学要点：实体自身放不下的规则（如跨字段校验）放在领域服务中，
// 应用层的用例只做编排，不写业务规则
type Service struct{}

// NewService 创建图书领域服务
func NewService() *Service {
	return &Service{}
}

// ValidateNew 校验新建图书的字段
// 返回trim后的副本；校验失败返回InvalidParams类错误
func (s *Service) ValidateNew(id, title, author, isbn, genre string, publicationYear int, description string) (*Book, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)
	genre = strings.TrimSpace(genre)
	description = strings.TrimSpace(description)

	if id != "" && utf8.RuneCountInString(id) > maxIDLength {
		return nil, ErrInvalidBook.WithMessage("图书编号过长")
	}
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}
	if err := s.validateAuthor(author); err != nil {
		return nil, err
	}
	if err := s.validateOptional(isbn, genre, publicationYear, description); err != nil {
		return nil, err
	}

	return NewBook(id, title, author, isbn, genre, publicationYear, description), nil
}

// ValidateUpdate 校验部分更新的字段
// 空更新（一个字段都没提供）视为非法请求
func (s *Service) ValidateUpdate(f UpdateFields) error {
	if f.IsEmpty() {
		return ErrEmptyUpdate
	}

	if f.Title != nil {
		if err := s.validateTitle(strings.TrimSpace(*f.Title)); err != nil {
			return err
		}
	}
	if f.Author != nil {
		if err := s.validateAuthor(strings.TrimSpace(*f.Author)); err != nil {
			return err
		}
	}

	isbn, genre, description := "", "", ""
	year := 0
	if f.ISBN != nil {
		isbn = strings.TrimSpace(*f.ISBN)
	}
	if f.Genre != nil {
		genre = strings.TrimSpace(*f.Genre)
	}
	if f.PublicationYear != nil {
		year = *f.PublicationYear
	}
	if f.Description != nil {
		description = strings.TrimSpace(*f.Description)
	}
	return s.validateOptional(isbn, genre, year, description)
}

func (s *Service) validateTitle(title string) error {
	if title == "" {
		return ErrInvalidBook.WithMessage("书名不能为空")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrInvalidBook.WithMessage("书名过长")
	}
	return nil
}

func (s *Service) validateAuthor(author string) error {
	if author == "" {
		return ErrInvalidBook.WithMessage("作者不能为空")
	}
	if utf8.RuneCountInString(author) > maxAuthorLength {
		return ErrInvalidBook.WithMessage("作者名过长")
	}
	return nil
}

func (s *Service) validateOptional(isbn, genre string, publicationYear int, description string) error {
	if utf8.RuneCountInString(isbn) > maxISBNLength {
		return ErrInvalidBook.WithMessage("ISBN过长")
	}
	if utf8.RuneCountInString(genre) > maxGenreLength {
		return ErrInvalidBook.WithMessage("类别过长")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return ErrInvalidBook.WithMessage("简介过长")
	}

	// 出版年份：0表示未知；否则限定合理区间（允许下一年，兼容预发行书目）
	if publicationYear != 0 {
		maxYear := time.Now().Year() + 1
		if publicationYear < minPublicationYear || publicationYear > maxYear {
			return ErrInvalidBook.WithMessage("出版年份超出合理区间")
		}
	}
	return nil
}
