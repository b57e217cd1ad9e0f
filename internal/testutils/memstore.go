package testutils

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// MemoryDB is an in-process stand-in for the PostgreSQL schema. It enforces
// the same uniqueness, foreign key and cascade rules as the migrations so
// that services and handlers can be tested without a database.
type MemoryDB struct {
	mu         sync.Mutex
	txMu       sync.Mutex
	nextID     int64
	users      map[int64]domain.User
	categories map[int64]domain.Category
	books      map[int64]domain.Book
	reviews    map[int64]domain.Review
}

// NewMemoryDB creates an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:      map[int64]domain.User{},
		categories: map[int64]domain.Category{},
		books:      map[int64]domain.Book{},
		reviews:    map[int64]domain.Review{},
	}
}

// Stores returns stores backed by db.
func (db *MemoryDB) Stores() store.Stores {
	return store.Stores{
		Users:      &MemoryUserStore{db: db},
		Books:      &MemoryBookStore{db: db},
		Categories: &MemoryCategoryStore{db: db},
		Reviews:    &MemoryReviewStore{db: db},
	}
}

// UnitOfWork returns a store.UnitOfWork over db. Units of work run one at a
// time and roll back every change when fn fails.
func (db *MemoryDB) UnitOfWork() store.UnitOfWork {
	return &memoryUnitOfWork{db: db}
}

func (db *MemoryDB) id() int64 {
	db.nextID++
	return db.nextID
}

type snapshot struct {
	nextID     int64
	users      map[int64]domain.User
	categories map[int64]domain.Category
	books      map[int64]domain.Book
	reviews    map[int64]domain.Review
}

func copyMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *MemoryDB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return snapshot{
		nextID:     db.nextID,
		users:      copyMap(db.users),
		categories: copyMap(db.categories),
		books:      copyMap(db.books),
		reviews:    copyMap(db.reviews),
	}
}

func (db *MemoryDB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID = s.nextID
	db.users = s.users
	db.categories = s.categories
	db.books = s.books
	db.reviews = s.reviews
}

type memoryUnitOfWork struct {
	db *MemoryDB
}

func (u *memoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	u.db.txMu.Lock()
	defer u.db.txMu.Unlock()

	before := u.db.snapshot()
	if err := fn(ctx, u.db.Stores()); err != nil {
		u.db.restore(before)
		return err
	}
	return nil
}

// MemoryUserStore implements store.UserStore.
type MemoryUserStore struct{ db *MemoryDB }

var _ store.UserStore = (*MemoryUserStore)(nil)

func (s *MemoryUserStore) WithTx(*sql.Tx) store.UserStore { return s }

// conflictLocked reports the uniqueness error u would cause.
func (s *MemoryUserStore) conflictLocked(u *domain.User) error {
	for id, other := range s.db.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Username, u.Username) {
			return store.ErrUsernameExists
		}
		if strings.EqualFold(other.Email, u.Email) {
			return store.ErrEmailExists
		}
	}
	return nil
}

func (s *MemoryUserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.conflictLocked(user); err != nil {
		return err
	}
	user.ID = s.db.id()
	s.db.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) find(match func(domain.User) bool) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return u.ID == id })
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if err := s.conflictLocked(user); err != nil {
		return err
	}
	current.Username = user.Username
	current.Email = user.Email
	current.ProfilePictureURL = user.ProfilePictureURL
	s.db.users[user.ID] = current
	return nil
}

func (s *MemoryUserStore) update(id int64, apply func(*domain.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	apply(&u)
	s.db.users[id] = u
	return nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if passwordHash == "" {
		return domain.NewValidationError("password", "hash cannot be empty", domain.ErrValidation)
	}
	return s.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (s *MemoryUserStore) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	if !role.IsValid() {
		return domain.NewValidationError("role", "must be Admin or User", domain.ErrInvalidRole)
	}
	return s.update(id, func(u *domain.User) { u.Role = role })
}

// MemoryCategoryStore implements store.CategoryStore.
type MemoryCategoryStore struct{ db *MemoryDB }

var _ store.CategoryStore = (*MemoryCategoryStore)(nil)

func (s *MemoryCategoryStore) WithTx(*sql.Tx) store.CategoryStore { return s }

func (s *MemoryCategoryStore) conflictLocked(c *domain.Category) error {
	for id, other := range s.db.categories {
		if id != c.ID && strings.EqualFold(other.Name, c.Name) {
			return store.ErrCategoryExists
		}
	}
	return nil
}

func (s *MemoryCategoryStore) Create(_ context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.conflictLocked(category); err != nil {
		return err
	}
	category.ID = s.db.id()
	s.db.categories[category.ID] = *category
	return nil
}

func (s *MemoryCategoryStore) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *MemoryCategoryStore) GetByName(_ context.Context, name string) (*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (s *MemoryCategoryStore) List(_ context.Context) ([]*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]*domain.Category, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryCategoryStore) Update(_ context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.categories[category.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	if err := s.conflictLocked(category); err != nil {
		return err
	}
	s.db.categories[category.ID] = *category
	return nil
}

func (s *MemoryCategoryStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.categories[id]; !ok {
		return store.ErrCategoryNotFound
	}
	for _, b := range s.db.books {
		if b.CategoryID == id {
			return store.ErrCategoryInUse
		}
	}
	delete(s.db.categories, id)
	return nil
}

func (s *MemoryCategoryStore) CountBooks(_ context.Context, id int64) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := 0
	for _, b := range s.db.books {
		if b.CategoryID == id {
			n++
		}
	}
	return n, nil
}

// MemoryBookStore implements store.BookStore.
type MemoryBookStore struct{ db *MemoryDB }

var _ store.BookStore = (*MemoryBookStore)(nil)

func (s *MemoryBookStore) WithTx(*sql.Tx) store.BookStore { return s }

func (s *MemoryBookStore) joinLocked(b domain.Book) *domain.Book {
	b.CategoryName = s.db.categories[b.CategoryID].Name
	return &b
}

func (s *MemoryBookStore) Create(_ context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.categories[book.CategoryID]; !ok {
		return store.ErrInvalidEntity
	}
	book.ID = s.db.id()
	stored := *book
	stored.CategoryName = ""
	s.db.books[book.ID] = stored
	return nil
}

func (s *MemoryBookStore) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.books[id]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	return s.joinLocked(b), nil
}

func (s *MemoryBookStore) List(_ context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []*domain.Book{}
	for _, b := range s.db.books {
		if filter.CategoryID != 0 && b.CategoryID != filter.CategoryID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(b.Title), term) &&
			!strings.Contains(strings.ToLower(b.Author), term) {
			continue
		}
		out = append(out, s.joinLocked(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryBookStore) Update(_ context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.books[book.ID]; !ok {
		return store.ErrBookNotFound
	}
	if _, ok := s.db.categories[book.CategoryID]; !ok {
		return store.ErrInvalidEntity
	}
	stored := *book
	stored.CategoryName = ""
	s.db.books[book.ID] = stored
	return nil
}

func (s *MemoryBookStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.books[id]; !ok {
		return store.ErrBookNotFound
	}
	delete(s.db.books, id)
	for rid, r := range s.db.reviews {
		if r.BookID == id {
			delete(s.db.reviews, rid)
		}
	}
	return nil
}

// MemoryReviewStore implements store.ReviewStore.
type MemoryReviewStore struct{ db *MemoryDB }

var _ store.ReviewStore = (*MemoryReviewStore)(nil)

func (s *MemoryReviewStore) WithTx(*sql.Tx) store.ReviewStore { return s }

func (s *MemoryReviewStore) joinLocked(r domain.Review) *domain.Review {
	r.Username = s.db.users[r.UserID].Username
	r.BookTitle = s.db.books[r.BookID].Title
	return &r
}

func (s *MemoryReviewStore) Create(_ context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.books[review.BookID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := s.db.users[review.UserID]; !ok {
		return store.ErrInvalidEntity
	}
	for _, r := range s.db.reviews {
		if r.UserID == review.UserID && r.BookID == review.BookID {
			return store.ErrReviewExists
		}
	}
	review.ID = s.db.id()
	s.db.reviews[review.ID] = *review
	return nil
}

func (s *MemoryReviewStore) find(match func(domain.Review) bool) (*domain.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, r := range s.db.reviews {
		if match(r) {
			return s.joinLocked(r), nil
		}
	}
	return nil, store.ErrReviewNotFound
}

func (s *MemoryReviewStore) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	return s.find(func(r domain.Review) bool { return r.ID == id })
}

func (s *MemoryReviewStore) GetByUserAndBook(_ context.Context, userID, bookID int64) (*domain.Review, error) {
	return s.find(func(r domain.Review) bool { return r.UserID == userID && r.BookID == bookID })
}

func (s *MemoryReviewStore) list(match func(domain.Review) bool) []*domain.Review {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []*domain.Review{}
	for _, r := range s.db.reviews {
		if match(r) {
			out = append(out, s.joinLocked(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *MemoryReviewStore) ListByBook(_ context.Context, bookID int64) ([]*domain.Review, error) {
	return s.list(func(r domain.Review) bool { return r.BookID == bookID }), nil
}

func (s *MemoryReviewStore) ListByUser(_ context.Context, userID int64) ([]*domain.Review, error) {
	return s.list(func(r domain.Review) bool { return r.UserID == userID }), nil
}

func (s *MemoryReviewStore) RatingsForBooks(_ context.Context, bookIDs []int64) (map[int64][]domain.Rating, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	wanted := make(map[int64]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}
	out := map[int64][]domain.Rating{}
	for _, r := range s.db.reviews {
		if wanted[r.BookID] {
			out[r.BookID] = append(out[r.BookID], r.Rating)
		}
	}
	return out, nil
}

func (s *MemoryReviewStore) Update(_ context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.reviews[review.ID]
	if !ok {
		return store.ErrReviewNotFound
	}
	current.Rating = review.Rating
	current.Comment = review.Comment
	current.UpdatedAt = review.UpdatedAt
	s.db.reviews[review.ID] = current
	return nil
}

func (s *MemoryReviewStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.reviews[id]; !ok {
		return store.ErrReviewNotFound
	}
	delete(s.db.reviews, id)
	return nil
}
