// Package postgres implements store.Store on sqlx over the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, business_name, phone,
	address, profile_image, is_active, created_at, updated_at`

const productColumns = `p.id, p.name, p.description, p.category, p.price, p.unit,
	p.stock, p.vendor_id, p.images, p.rating, p.status, p.origin, p.certifications,
	p.specifications, p.vendor_name, p.featured, p.created_at, p.updated_at,
	COALESCE(u.name, '') AS v_name, COALESCE(u.business_name, '') AS v_business_name,
	COALESCE(u.email, '') AS v_email`

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// productRow carries the joined vendor columns.
type productRow struct {
	models.Product
	VName         string `db:"v_name"`
	VBusinessName string `db:"v_business_name"`
	VEmail        string `db:"v_email"`
}

func (r *productRow) product() models.Product {
	p := r.Product
	if r.VEmail != "" {
		p.Vendor = &models.VendorSummary{
			ID:           p.VendorID,
			Name:         r.VName,
			BusinessName: r.VBusinessName,
			Email:        r.VEmail,
		}
	}
	return p
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`,
		models.NormalizeEmail(email))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, business_name, phone,
			address, profile_image, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :role, :business_name, :phone,
			:address, :profile_image, :is_active, :created_at, :updated_at)`, u)
	if isUniqueViolation(err) {
		return common.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		q += ` WHERE role = $1`
		args = append(args, role)
	}
	q += ` ORDER BY created_at DESC`

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, fmt.Errorf("postgres: list users: %w", err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var u models.User
	if err := tx.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, notFound(err)
	}

	upd.Apply(&u)
	u.UpdatedAt = s.now().UTC()

	_, err = tx.NamedExecContext(ctx, `
		UPDATE users SET name = :name, email = :email, business_name = :business_name,
			phone = :phone, address = :address, profile_image = :profile_image,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, &u)
	if isUniqueViolation(err) {
		return nil, common.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: update password: %w", err)
	}
	return requireOne(res)
}

func (s *Store) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns,
		role, s.now().UTC(), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	return requireOne(res)
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ApplyDefaults()
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (id, name, description, category, price, unit, stock,
			vendor_id, images, rating, status, origin, certifications, specifications,
			vendor_name, featured, created_at, updated_at)
		VALUES (:id, :name, :description, :category, :price, :unit, :stock,
			:vendor_id, :images, :rating, :status, :origin, :certifications, :specifications,
			:vendor_name, :featured, :created_at, :updated_at)`, p)
	if err != nil {
		return fmt.Errorf("postgres: create product: %w", err)
	}

	created, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Vendor = created.Vendor
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT `+productColumns+`
		FROM products p LEFT JOIN users u ON u.id = p.vendor_id
		WHERE p.id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	p := row.product()
	return &p, nil
}

// buildProductQuery assembles the filtered listing query.
func buildProductQuery(f models.ProductFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Vendor != "" {
		add("p.vendor_id = $%d", f.Vendor)
	}
	if f.Category != "" {
		add("p.category = $%d", f.Category)
	}
	if f.Status != "" {
		add("p.status = $%d", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("to_tsvector('english', p.name || ' ' || p.description) @@ plainto_tsquery('english', $%d)", s)
	}

	q := `SELECT ` + productColumns + ` FROM products p LEFT JOIN users u ON u.id = p.vendor_id`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY p.created_at DESC`
	return q, args
}

func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	if f.Vendor != "" {
		if _, err := uuid.Parse(f.Vendor); err != nil {
			return []models.Product{}, nil
		}
	}

	q, args := buildProductQuery(f)
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("postgres: list products: %w", err)
	}

	out := make([]models.Product, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].product())
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(current)
	current.UpdatedAt = s.now().UTC()

	res, err := s.db.NamedExecContext(ctx, `
		UPDATE products SET name = :name, description = :description, category = :category,
			price = :price, unit = :unit, stock = :stock, images = :images, status = :status,
			origin = :origin, certifications = :certifications,
			specifications = :specifications, featured = :featured, updated_at = :updated_at
		WHERE id = :id`, current)
	if err != nil {
		return nil, fmt.Errorf("postgres: update product: %w", err)
	}
	if err := requireOne(res); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete product: %w", err)
	}
	return requireOne(res)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
