package book

import "context"

// Repository 图书仓储接口
// 接口定义在domain层，实现在infrastructure层（依赖倒置）
type Repository interface {
	// Create 新增图书
	// 编号已存在时返回ErrDuplicateBookID
	Create(ctx context.Context, b *Book) error

	// FindByID 按编号查询图书，不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id string) (*Book, error)

	// Update 保存图书变更，图书不存在返回ErrBookNotFound
	Update(ctx context.Context, b *Book) error

	// Delete 按编号删除图书，不存在返回ErrBookNotFound
	Delete(ctx context.Context, id string) error

	// ListAll 列出全部图书，按作者、书名升序排列
	ListAll(ctx context.Context) ([]*Book, error)

	// ListGenres 列出馆藏中出现过的类别（去重、升序、不含空串）
	ListGenres(ctx context.Context) ([]string, error)

	// Search 按已规范化的检索条件查询
	// 调用方必须先执行SearchQuery.Normalize
	Search(ctx context.Context, q SearchQuery) ([]*Book, error)
}
