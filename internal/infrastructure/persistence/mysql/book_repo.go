package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如编号重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := toBookModel(b)

	// 2. 插入数据库
	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		// 检查是否为编号重复错误
		if isDuplicateError(err) {
			return book.ErrDuplicateBookID
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填数据库生成的时间戳
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据编号查找图书
func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	db := r.getDB(ctx)
	err := db.Where("id = ?", id).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	// 使用Updates按主键更新，RowsAffected区分"不存在"
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"title":            model.Title,
		"author":           model.Author,
		"isbn":             model.ISBN,
		"genre":            model.Genre,
		"publication_year": model.PublicationYear,
		"description":      model.Description,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在，也可能是字段没有变化，再查一次确认
		var count int64
		if err := db.Model(&BookModel{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询图书失败")
		}
		if count == 0 {
			return book.ErrBookNotFound
		}
	}

	return nil
}

// Delete 删除图书
func (r *bookRepository) Delete(ctx context.Context, id string) error {
	db := r.getDB(ctx)
	result := db.Where("id = ?", id).Delete(&BookModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// ListAll 列出全部图书
// 默认浏览顺序：作者升序，同作者按书名升序，最后按编号升序保证稳定
func (r *bookRepository) ListAll(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	db := r.getDB(ctx)
	err := db.Order("author ASC, title ASC, id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(models), nil
}

// ListGenres 列出馆藏中出现过的类别（去重、升序）
func (r *bookRepository) ListGenres(ctx context.Context) ([]string, error) {
	var genres []string
	db := r.getDB(ctx)
	err := db.Model(&BookModel{}).
		Distinct("genre").
		Where("genre <> ''").
		Order("genre ASC").
		Pluck("genre", &genres).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询类别列表失败")
	}

	return genres, nil
}

// Search 按检索条件查询图书
// 语义约定(调用方必须先Normalize):
// 1. 各条件之间AND
// 2. 检索词大小写不敏感子串匹配，LOWER两侧统一小写，不依赖列collation
// 3. 类别用BINARY精确匹配（大小写敏感）
// 4. 排序字段走白名单映射，附加id升序作稳定tie-breaker
func (r *bookRepository) Search(ctx context.Context, q book.SearchQuery) ([]*book.Book, error) {
	db := r.getDB(ctx)
	query := db.Model(&BookModel{})

	// 1. 检索词过滤
	if q.Term != "" {
		term := "%" + escapeLike(strings.ToLower(q.Term)) + "%"
		switch {
		case q.ByID:
			query = query.Where("LOWER(id) LIKE ?", term)
		case q.ByTitle:
			query = query.Where("LOWER(title) LIKE ?", term)
		default:
			// 作用于所有文本字段
			query = query.Where(
				"LOWER(id) LIKE ? OR LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ? OR LOWER(genre) LIKE ? OR LOWER(description) LIKE ?",
				term, term, term, term, term, term,
			)
		}
	}

	// 2. 类别精确过滤
	if q.Genre != "" {
		query = query.Where("genre = BINARY ?", q.Genre)
	}

	// 3. 排序（列名来自白名单映射，不拼接用户输入）
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, book.ErrInvalidSortKey
	}
	direction := "ASC"
	if q.SortOrder == book.SortDesc {
		direction = "DESC"
	}
	query = query.Order(column + " " + direction)
	if column != "id" {
		query = query.Order("id ASC")
	}

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "检索图书失败")
	}

	return toBookEntities(models), nil
}

// likeEscaper 转义LIKE元字符，检索词按字面匹配
// MySQL默认转义符是反斜杠，"50%"要匹配字面的"50%"而不是任意"50"前缀
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// sortColumns 排序字段 → 数据库列名的白名单映射
var sortColumns = map[string]string{
	book.SortByID:              "id",
	book.SortByTitle:           "title",
	book.SortByAuthor:          "author",
	book.SortByGenre:           "genre",
	book.SortByPublicationYear: "publication_year",
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		Author:          model.Author,
		ISBN:            model.ISBN,
		Genre:           model.Genre,
		PublicationYear: model.PublicationYear,
		Description:     model.Description,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
