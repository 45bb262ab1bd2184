package lending

import (
	"context"
	"sort"

	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
)

// 内存假实现，用例单元测试不依赖MySQL/Redis
// 并发语义（FOR UPDATE、条件UPDATE）在仓储集成测试覆盖，
// 这里只还原接口约定的返回值

// ---------- 事务 ----------

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------- 图书仓储 ----------

type fakeBookRepo struct {
	books map[string]*book.Book
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	r := &fakeBookRepo{books: make(map[string]*book.Book)}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	if _, ok := r.books[b.ID]; ok {
		return book.ErrDuplicateBookID
	}
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id string) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) ListAll(ctx context.Context) ([]*book.Book, error) {
	books := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
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

func (r *fakeBookRepo) ListGenres(ctx context.Context) ([]string, error) {
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

func (r *fakeBookRepo) Search(ctx context.Context, q book.SearchQuery) ([]*book.Book, error) {
	return r.ListAll(ctx)
}

// ---------- 副本仓储 ----------

type fakeCopyRepo struct {
	nextID uint
	copies map[uint]*copydomain.Copy

	// markBorrowedConflicts 前N次MarkBorrowed强制返回冲突，模拟副本被并发抢走
	markBorrowedConflicts int
}

func newFakeCopyRepo() *fakeCopyRepo {
	return &fakeCopyRepo{copies: make(map[uint]*copydomain.Copy)}
}

func (r *fakeCopyRepo) addCopies(bookID string, n int) []uint {
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		c := copydomain.NewCopy(bookID)
		_ = r.Create(context.Background(), c)
		ids = append(ids, c.ID)
	}
	return ids
}

func (r *fakeCopyRepo) Create(ctx context.Context, c *copydomain.Copy) error {
	r.nextID++
	c.ID = r.nextID
	r.copies[c.ID] = c
	return nil
}

func (r *fakeCopyRepo) FindByID(ctx context.Context, id uint) (*copydomain.Copy, error) {
	c, ok := r.copies[id]
	if !ok {
		return nil, copydomain.ErrCopyNotFound
	}
	return c, nil
}

func (r *fakeCopyRepo) FindAvailableByBook(ctx context.Context, bookID string) (*copydomain.Copy, error) {
	var found *copydomain.Copy
	for _, c := range r.copies {
		if c.BookID != bookID || c.Status != copydomain.StatusAvailable {
			continue
		}
		if found == nil || c.ID < found.ID {
			found = c
		}
	}
	if found == nil {
		return nil, copydomain.ErrNoCopyAvailable
	}
	return found, nil
}

func (r *fakeCopyRepo) ListByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	var copies []*copydomain.Copy
	for _, c := range r.copies {
		if c.BookID == bookID {
			copies = append(copies, c)
		}
	}
	sort.Slice(copies, func(i, j int) bool { return copies[i].ID < copies[j].ID })
	return copies, nil
}

func (r *fakeCopyRepo) LockByBook(ctx context.Context, bookID string) ([]*copydomain.Copy, error) {
	return r.ListByBook(ctx, bookID)
}

func (r *fakeCopyRepo) MarkBorrowed(ctx context.Context, id uint) error {
	if r.markBorrowedConflicts > 0 {
		r.markBorrowedConflicts--
		return copydomain.ErrCopyNotAvailable
	}
	c, ok := r.copies[id]
	if !ok {
		return copydomain.ErrCopyNotFound
	}
	if c.Status != copydomain.StatusAvailable {
		return copydomain.ErrCopyNotAvailable
	}
	c.Status = copydomain.StatusBorrowed
	return nil
}

func (r *fakeCopyRepo) MarkAvailable(ctx context.Context, id uint) error {
	c, ok := r.copies[id]
	if !ok {
		return copydomain.ErrCopyNotFound
	}
	if c.Status != copydomain.StatusBorrowed {
		return copydomain.ErrNoBorrowedCopy
	}
	c.Status = copydomain.StatusAvailable
	return nil
}

func (r *fakeCopyRepo) UpdateStatus(ctx context.Context, id uint, status copydomain.Status) error {
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

func (r *fakeCopyRepo) StatsForBook(ctx context.Context, bookID string) (*copydomain.Stats, error) {
	stats := &copydomain.Stats{}
	for _, c := range r.copies {
		if c.BookID != bookID {
			continue
		}
		stats.Total++
		switch c.Status {
		case copydomain.StatusAvailable:
			stats.Available++
		case copydomain.StatusBorrowed:
			stats.Borrowed++
		}
	}
	return stats, nil
}

func (r *fakeCopyRepo) CountAvailableByBook(ctx context.Context, bookID string) (int64, error) {
	stats, _ := r.StatsForBook(ctx, bookID)
	return stats.Available, nil
}

func (r *fakeCopyRepo) DeleteByBook(ctx context.Context, bookID string) error {
	for id, c := range r.copies {
		if c.BookID == bookID {
			delete(r.copies, id)
		}
	}
	return nil
}

// ---------- 借阅记录仓储 ----------

type fakeLoanRepo struct {
	nextID uint
	loans  []*loan.Loan
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.nextID++
	l.ID = r.nextID
	r.loans = append(r.loans, l)
	return nil
}

func (r *fakeLoanRepo) Update(ctx context.Context, l *loan.Loan) error {
	for _, stored := range r.loans {
		if stored.ID == l.ID {
			stored.ReturnedAt = l.ReturnedAt
			stored.UpdatedAt = l.UpdatedAt
			return nil
		}
	}
	return loan.ErrLoanNotFound
}

func (r *fakeLoanRepo) FindByLoanNo(ctx context.Context, loanNo string) (*loan.Loan, error) {
	for _, l := range r.loans {
		if l.LoanNo == loanNo {
			return l, nil
		}
	}
	return nil, loan.ErrLoanNotFound
}

func (r *fakeLoanRepo) LockByLoanNo(ctx context.Context, loanNo string) (*loan.Loan, error) {
	return r.FindByLoanNo(ctx, loanNo)
}

func (r *fakeLoanRepo) LockOpenByMemberAndBook(ctx context.Context, memberID uint, bookID string) (*loan.Loan, error) {
	var found *loan.Loan
	for _, l := range r.loans {
		if l.MemberID != memberID || l.BookID != bookID || !l.IsOpen() {
			continue
		}
		if found == nil || l.BorrowedAt.Before(found.BorrowedAt) ||
			(l.BorrowedAt.Equal(found.BorrowedAt) && l.ID < found.ID) {
			found = l
		}
	}
	if found == nil {
		return nil, loan.ErrLoanNotFound
	}
	return found, nil
}

func (r *fakeLoanRepo) CountOpenByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	for _, l := range r.loans {
		if l.MemberID == memberID && l.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) CountOpenByBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	for _, l := range r.loans {
		if l.BookID == bookID && l.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) ListOpenByMember(ctx context.Context, memberID uint) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for _, l := range r.loans {
		if l.MemberID == memberID && l.IsOpen() {
			loans = append(loans, l)
		}
	}
	sortLoansByBorrowedAsc(loans)
	return loans, nil
}

func (r *fakeLoanRepo) ListOpenByBook(ctx context.Context, bookID string) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for _, l := range r.loans {
		if l.BookID == bookID && l.IsOpen() {
			loans = append(loans, l)
		}
	}
	sortLoansByBorrowedAsc(loans)
	return loans, nil
}

func (r *fakeLoanRepo) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*loan.Loan, int64, error) {
	var all []*loan.Loan
	for _, l := range r.loans {
		if l.MemberID == memberID {
			all = append(all, l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BorrowedAt.After(all[j].BorrowedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func sortLoansByBorrowedAsc(loans []*loan.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].BorrowedAt.Equal(loans[j].BorrowedAt) {
			return loans[i].BorrowedAt.Before(loans[j].BorrowedAt)
		}
		return loans[i].ID < loans[j].ID
	})
}

// ---------- 读者仓储 ----------

type fakeMemberRepo struct {
	members map[uint]*member.Member
}

func newFakeMemberRepo(members ...*member.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: make(map[uint]*member.Member)}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *fakeMemberRepo) Create(ctx context.Context, m *member.Member) error {
	for _, stored := range r.members {
		if stored.Email == m.Email {
			return member.ErrEmailDuplicate
		}
	}
	m.ID = uint(len(r.members) + 1)
	r.members[m.ID] = m
	return nil
}

func (r *fakeMemberRepo) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	return m, nil
}

func (r *fakeMemberRepo) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (r *fakeMemberRepo) LockByID(ctx context.Context, id uint) (*member.Member, error) {
	return r.FindByID(ctx, id)
}

// ---------- 缓存与事件 ----------

type fakeStatsCache struct {
	stats       map[string]*copydomain.Stats
	invalidated []string
	setCalls    int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{stats: make(map[string]*copydomain.Stats)}
}

func (c *fakeStatsCache) GetStats(ctx context.Context, bookID string) (*copydomain.Stats, bool) {
	stats, ok := c.stats[bookID]
	return stats, ok
}

func (c *fakeStatsCache) SetStats(ctx context.Context, bookID string, stats *copydomain.Stats) {
	c.setCalls++
	c.stats[bookID] = stats
}

func (c *fakeStatsCache) Invalidate(ctx context.Context, bookID string) {
	delete(c.stats, bookID)
	c.invalidated = append(c.invalidated, bookID)
}

type fakeEventPublisher struct {
	created  []LoanCreatedEvent
	returned []LoanReturnedEvent
	err      error
}

func (p *fakeEventPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, event)
	return nil
}

func (p *fakeEventPublisher) PublishLoanReturned(ctx context.Context, event LoanReturnedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.returned = append(p.returned, event)
	return nil
}
