// Package store defines persistence for users and products.
//
// Every implementation normalizes emails on write and lookup, reports a
// duplicate email as common.ErrConflict and a missing record as
// common.ErrNotFound.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

type Store interface {
	// FindUserByEmail returns the full record including the password hash.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateUser assigns ID and timestamps. Creation is atomic with the
	// uniqueness check on email.
	CreateUser(ctx context.Context, u *models.User) error
	// ListUsers returns users newest first. An empty role lists everyone.
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *models.Product) error
	// GetProduct populates the vendor summary.
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// ListProducts returns matching products newest first with vendor summaries.
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}

// timeoutStore bounds every call and reports deadline overruns as the store
// being unavailable.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps s so that no call runs longer than d.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, t.timeout)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, common.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return err
}

func (t *timeoutStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	u, err := t.next.FindUserByEmail(ctx, email)
	return u, translate(err)
}

func (t *timeoutStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	u, err := t.next.FindUserByID(ctx, id)
	return u, translate(err)
}

func (t *timeoutStore) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.CreateUser(ctx, u))
}

func (t *timeoutStore) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	users, err := t.next.ListUsers(ctx, role)
	return users, translate(err)
}

func (t *timeoutStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	u, err := t.next.UpdateUser(ctx, id, upd)
	return u, translate(err)
}

func (t *timeoutStore) UpdatePassword(ctx context.Context, id, hash string) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.UpdatePassword(ctx, id, hash))
}

func (t *timeoutStore) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	u, err := t.next.UpdateRole(ctx, id, role)
	return u, translate(err)
}

func (t *timeoutStore) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.DeleteUser(ctx, id))
}

func (t *timeoutStore) CreateProduct(ctx context.Context, p *models.Product) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.CreateProduct(ctx, p))
}

func (t *timeoutStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	p, err := t.next.GetProduct(ctx, id)
	return p, translate(err)
}

func (t *timeoutStore) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	ps, err := t.next.ListProducts(ctx, f)
	return ps, translate(err)
}

func (t *timeoutStore) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	p, err := t.next.UpdateProduct(ctx, id, upd)
	return p, translate(err)
}

func (t *timeoutStore) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.DeleteProduct(ctx, id))
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return translate(t.next.Ping(ctx))
}

func (t *timeoutStore) Close() error {
	return t.next.Close()
}
