// Package memory is a mutex-guarded Store for development and tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	byEmail  map[string]string
	products map[string]models.Product

	// now is swapped in tests that care about ordering.
	now func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		byEmail:  make(map[string]string),
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = models.NormalizeEmail(u.Email)
	if _, taken := s.byEmail[u.Email]; taken {
		return common.ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	oldEmail := u.Email
	upd.Apply(&u)
	if u.Email != oldEmail {
		if _, taken := s.byEmail[u.Email]; taken {
			return nil, common.ErrConflict
		}
		delete(s.byEmail, oldEmail)
		s.byEmail[u.Email] = id
	}
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ApplyDefaults()
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Vendor = nil

	s.products[p.ID] = *p
	p.Vendor = s.vendorSummary(p.VendorID)
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	p.Vendor = s.vendorSummary(p.VendorID)
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Vendor != "" && p.VendorID != f.Vendor {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		p.Vendor = s.vendorSummary(p.VendorID)
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	upd.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p
	p.Vendor = s.vendorSummary(p.VendorID)
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// caller holds s.mu
func (s *Store) vendorSummary(id string) *models.VendorSummary {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &models.VendorSummary{ID: u.ID, Name: u.Name, BusinessName: u.BusinessName, Email: u.Email}
}
