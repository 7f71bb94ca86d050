package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestUserSet(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	email := " New@Example.com "
	active := false

	set := userSet(models.UserUpdate{Email: &email, IsActive: &active}, now)

	assert.Equal(t, bson.M{
		"updatedAt": now,
		"email":     "new@example.com",
		"isActive":  false,
	}, set)
}

func TestProductSet_OnlyProvidedFields(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 12.5
	images := models.StringList{"a.jpg"}

	set := productSet(models.ProductUpdate{Price: &price, Images: &images}, now)

	assert.Len(t, set, 3)
	assert.Equal(t, 12.5, set["price"])
	assert.Equal(t, images, set["images"])
	assert.NotContains(t, set, "vendor")
}

func TestProductQuery(t *testing.T) {
	assert.Empty(t, productQuery(models.ProductFilter{}))

	q := productQuery(models.ProductFilter{Vendor: "v1", Status: "active", Search: " bark "})
	assert.Equal(t, bson.M{
		"vendor": "v1",
		"status": "active",
		"$text":  bson.M{"$search": "bark"},
	}, q)
}

func TestVendorIDs_Dedupes(t *testing.T) {
	ps := []*models.Product{{VendorID: "a"}, {VendorID: "b"}, {VendorID: "a"}, {}}
	assert.Equal(t, []string{"a", "b"}, vendorIDs(ps))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), common.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapErr(dup), common.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}
