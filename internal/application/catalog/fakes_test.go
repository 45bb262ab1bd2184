package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
)

// 内存假实现
// memBookRepo按仓储接口约定还原检索语义（子串匹配/精确类别/白名单排序），
// SQL层的等价行为由仓储集成测试覆盖

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------- 图书仓储 ----------

type memBookRepo struct {
	books map[string]*book.Book
}

func newMemBookRepo(books ...*book.Book) *memBookRepo {
	r := &memBookRepo{books: make(map[string]*book.Book)}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (r *memBookRepo) Create(ctx context.Context, b *book.Book) error {
	if _, ok := r.books[b.ID]; ok {
		return book.ErrDuplicateBookID
	}
	r.books[b.ID] = b
	return nil
}

func (r *memBookRepo) FindByID(ctx context.Context, id string) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (r *memBookRepo) Update(ctx context.Context, b *book.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.books[b.ID] = b
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *memBookRepo) ListAll(ctx context.Context) ([]*book.Book, error) {
	books := r.all()
	sort.Slice(books, func(i, j int) bool {
		if books[i].Author != books[j].Author {
			return books[i].Author < books[j].Author
		}
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ID < books[j].ID
	})
	return books, nil
}

func (r *memBookRepo) ListGenres(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var genres []string
	for _, b := range r.books {
		if b.Genre != "" && !seen[b.Genre] {
			seen[b.Genre] = true
			genres = append(genres, b.Genre)
		}
	}
	sort.Strings(genres)
	return genres, nil
}

func (r *memBookRepo) Search(ctx context.Context, q book.SearchQuery) ([]*book.Book, error) {
	var matched []*book.Book
	for _, b := range r.all() {
		if matchesTerm(b, q) && matchesGenre(b, q) {
			matched = append(matched, b)
		}
	}
	sortBooks(matched, q.SortBy, q.SortOrder)
	return matched, nil
}

func (r *memBookRepo) all() []*book.Book {
	books := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	return books
}

func matchesTerm(b *book.Book, q book.SearchQuery) bool {
	if q.Term == "" {
		return true
	}
	term := strings.ToLower(q.Term)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }

	switch {
	case q.ByID:
		return contains(b.ID)
	case q.ByTitle:
		return contains(b.Title)
	default:
		return contains(b.ID) || contains(b.Title) || contains(b.Author) ||
			contains(b.ISBN) || contains(b.Genre) || contains(b.Description)
	}
}

func matchesGenre(b *book.Book, q book.SearchQuery) bool {
	return q.Genre == "" || b.Genre == q.Genre
}

func sortBooks(books []*book.Book, sortBy, order string) {
	key := func(b *book.Book) string {
		switch sortBy {
		case book.SortByTitle:
			return b.Title
		case book.SortByAuthor:
			return b.Author
		case book.SortByGenre:
			return b.Genre
		default:
			return b.ID
		}
	}
	less := func(i, j int) bool {
		var cmp int
		if sortBy == book.SortByPublicationYear {
			cmp = books[i].PublicationYear - books[j].PublicationYear
		} else {
			cmp = strings.Compare(key(books[i]), key(books[j]))
		}
		if cmp == 0 {
			return books[i].ID < books[j].ID
		}
		if order == book.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.Slice(books, less)
}

// ---------- 副本/借阅仓储桩 ----------
// 嵌入接口，只覆盖用例用到的方法；误调未实现的方法会panic暴露问题

type stubCopyRepo struct {
	copydomain.Repository
	copies map[uint]*copydomain.Copy
	nextID uint
}

func newStubCopyRepo() *stubCopyRepo {
	return &stubCopyRepo{copies: make(map[uint]*copydomain.Copy)}
}

func (r *stubCopyRepo) Create(ctx context.Context, c *copydomain.Copy) error {
	r.nextID++
	c.ID = r.nextID
	r.copies[c.ID] = c
	return nil
}

func (r *stubCopyRepo) FindByID(ctx context.Context, id uint) (*copydomain.Copy, error) {
	c, ok := r.copies[id]
	if !ok {
		return nil, copydomain.ErrCopyNotFound
	}
	return c, nil
}

func (r *stubCopyRepo) ListByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	var copies []*copydomain.Copy
	for _, c := range r.copies {
		if c.BookID == bookID {
			copies = append(copies, c)
		}
	}
	sort.Slice(copies, func(i, j int) bool { return copies[i].ID < copies[j].ID })
	return copies, nil
}

func (r *stubCopyRepo) LockByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	return r.ListByBook(ctx, bookID)
}

func (r *stubCopyRepo) UpdateStatus(ctx context.Context, id uint, status copydomain.Status) error {
	c, ok := r.copies[id]
	if !ok {
		return copydomain.ErrCopyNotFound
	}
	if !status.IsValid() {
		return copydomain.ErrInvalidStatus
	}
	if c.Status == status {
		return nil
	}
	if !copydomain.CanTransition(c.Status, status) {
		return copydomain.ErrInvalidTransition
	}
	c.Status = status
	return nil
}

func (r *stubCopyRepo) DeleteByBook(ctx context.Context, bookID string) error {
	for id, c := range r.copies {
		if c.BookID == bookID {
			delete(r.copies, id)
		}
	}
	return nil
}

type stubLoanRepo struct {
	loan.Repository
	openByBook map[string]int64
}

func (r *stubLoanRepo) CountOpenByBook(ctx context.Context, bookID string) (int64, error) {
	return r.openByBook[bookID], nil
}

// ---------- 缓存 ----------

type stubCache struct {
	invalidated []string
}

func (c *stubCache) Invalidate(ctx context.Context, bookID string) {
	c.invalidated = append(c.invalidated, bookID)
}
