// Package mongo implements store.Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	products *mongo.Collection
	now      func() time.Time
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	s := &Store{
		client:   client,
		users:    client.Database(database).Collection(usersCollection),
		products: client.Database(database).Collection(productsCollection),
		now:      time.Now,
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: user indexes: %w", err)
	}

	_, err = s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "vendor", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: product indexes: %w", err)
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrConflict
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapErr(err)
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

	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.users.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, mapErr(err)
	}
	return users, nil
}

// userSet turns a partial update into a $set document.
func userSet(upd models.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = models.NormalizeEmail(*upd.Email)
	}
	if upd.BusinessName != nil {
		set["businessName"] = *upd.BusinessName
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.ProfileImage != nil {
		set["profileImage"] = *upd.ProfileImage
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	return set
}

func (s *Store) updateUser(ctx context.Context, id string, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	return s.updateUser(ctx, id, userSet(upd, s.now().UTC()))
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := s.updateUser(ctx, id, bson.M{"password_hash": hash, "updatedAt": s.now().UTC()})
	return err
}

func (s *Store) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	return s.updateUser(ctx, id, bson.M{"role": role, "updatedAt": s.now().UTC()})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ApplyDefaults()
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return mapErr(err)
	}
	return s.attachVendors(ctx, []*models.Product{p})
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	if err := s.attachVendors(ctx, []*models.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// productQuery builds the listing filter.
func productQuery(f models.ProductFilter) bson.M {
	q := bson.M{}
	if f.Vendor != "" {
		q["vendor"] = f.Vendor
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q["$text"] = bson.M{"$search": s}
	}
	return q
}

func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.products.Find(ctx, productQuery(f), opts)
	if err != nil {
		return nil, mapErr(err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, mapErr(err)
	}

	ptrs := make([]*models.Product, len(products))
	for i := range products {
		ptrs[i] = &products[i]
	}
	if err := s.attachVendors(ctx, ptrs); err != nil {
		return nil, err
	}
	return products, nil
}

func productSet(upd models.ProductUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Unit != nil {
		set["unit"] = *upd.Unit
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Origin != nil {
		set["origin"] = *upd.Origin
	}
	if upd.Certifications != nil {
		set["certifications"] = *upd.Certifications
	}
	if upd.Specifications != nil {
		set["specifications"] = *upd.Specifications
	}
	if upd.Featured != nil {
		set["featured"] = *upd.Featured
	}
	return set
}

func (s *Store) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": productSet(upd, s.now().UTC())}, opts).Decode(&p)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := s.attachVendors(ctx, []*models.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// attachVendors fills Vendor on each product with one lookup.
func (s *Store) attachVendors(ctx context.Context, products []*models.Product) error {
	ids := vendorIDs(products)
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "businessName": 1, "email": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return mapErr(err)
	}
	var vendors []models.User
	if err := cur.All(ctx, &vendors); err != nil {
		return mapErr(err)
	}

	byID := make(map[string]*models.VendorSummary, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = &models.VendorSummary{ID: v.ID, Name: v.Name, BusinessName: v.BusinessName, Email: v.Email}
	}
	for _, p := range products {
		p.Vendor = byID[p.VendorID]
	}
	return nil
}

func vendorIDs(products []*models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if p.VendorID == "" {
			continue
		}
		if _, ok := seen[p.VendorID]; ok {
			continue
		}
		seen[p.VendorID] = struct{}{}
		ids = append(ids, p.VendorID)
	}
	return ids
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
