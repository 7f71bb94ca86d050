package models

import (
	"strings"
	"time"
)

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// User is the stored identity record. PasswordHash never leaves the server.
type User struct {
	ID           string    `db:"id" bson:"_id" json:"id"`
	Name         string    `db:"name" bson:"name" json:"name"`
	Email        string    `db:"email" bson:"email" json:"email"`
	PasswordHash string    `db:"password_hash" bson:"password_hash" json:"-"`
	Role         Role      `db:"role" bson:"role" json:"role"`
	BusinessName string    `db:"business_name" bson:"businessName,omitempty" json:"businessName,omitempty"`
	Phone        string    `db:"phone" bson:"phone,omitempty" json:"phone,omitempty"`
	Address      Address   `db:"address" bson:"address" json:"address"`
	ProfileImage string    `db:"profile_image" bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	IsActive     bool      `db:"is_active" bson:"isActive" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// Profile is the redacted view of a User that is safe to send to clients.
// It has no password field at all, so no code path can serialize one.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	BusinessName string    `json:"businessName,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      Address   `json:"address"`
	ProfileImage string    `json:"profileImage,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		BusinessName: u.BusinessName,
		Phone:        u.Phone,
		Address:      u.Address,
		ProfileImage: u.ProfileImage,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Profiles redacts a slice of users.
func Profiles(users []User) []Profile {
	out := make([]Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out
}

// NormalizeEmail is applied on every write and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser is the registration payload.
type NewUser struct {
	Name         string  `json:"name" validate:"required,max=60"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	Role         Role    `json:"role" validate:"omitempty,role"`
	BusinessName string  `json:"businessName" validate:"required_if=Role vendor,max=100"`
	Phone        string  `json:"phone" validate:"max=32"`
	Address      Address `json:"address"`
	ProfileImage string  `json:"profileImage" validate:"omitempty,max=2048"`
}

// UserUpdate is a partial profile update. Password and role are not part of
// it; they change only through their dedicated operations.
type UserUpdate struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=60"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email"`
	BusinessName *string  `json:"businessName,omitempty" validate:"omitempty,max=100"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address      *Address `json:"address,omitempty"`
	ProfileImage *string  `json:"profileImage,omitempty" validate:"omitempty,max=2048"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

// Apply merges the set fields of upd into u.
func (upd UserUpdate) Apply(u *User) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = NormalizeEmail(*upd.Email)
	}
	if upd.BusinessName != nil {
		u.BusinessName = *upd.BusinessName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
}

// Merge applies upd to a profile the same way Apply does to a user.
func (p *Profile) Merge(upd UserUpdate) {
	u := User{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
		BusinessName: p.BusinessName,
		Phone:        p.Phone,
		Address:      p.Address,
		ProfileImage: p.ProfileImage,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	upd.Apply(&u)
	*p = u.Profile()
}
