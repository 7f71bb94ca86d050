package models

import "time"

const (
	ProductStatusActive     = "active"
	ProductStatusPending    = "pending"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out-of-stock"

	DefaultProductUnit   = "kg"
	DefaultProductOrigin = "Sri Lanka"
)

var (
	ProductCategories = []string{"Cinnamon Sticks", "Cinnamon Powder", "Cinnamon Oil", "Cinnamon Tea", "Other"}
	ProductUnits      = []string{"kg", "g", "lb", "oz", "pcs", "piece", "pack"}
	ProductStatuses   = []string{ProductStatusActive, ProductStatusPending, ProductStatusInactive, ProductStatusOutOfStock}
)

type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

type Specifications struct {
	Origin     string `json:"origin,omitempty" bson:"origin,omitempty"`
	Grade      string `json:"grade,omitempty" bson:"grade,omitempty"`
	Moisture   string `json:"moisture,omitempty" bson:"moisture,omitempty"`
	OilContent string `json:"oilContent,omitempty" bson:"oilContent,omitempty"`
}

// VendorSummary is attached to product reads.
type VendorSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName,omitempty"`
	Email        string `json:"email"`
}

type Product struct {
	ID             string         `db:"id" bson:"_id" json:"id"`
	Name           string         `db:"name" bson:"name" json:"name" validate:"required,max=100"`
	Description    string         `db:"description" bson:"description" json:"description" validate:"required,max=2000"`
	Category       string         `db:"category" bson:"category" json:"category" validate:"required,product_category"`
	Price          float64        `db:"price" bson:"price" json:"price" validate:"gte=0"`
	Unit           string         `db:"unit" bson:"unit" json:"unit" validate:"product_unit"`
	Stock          int            `db:"stock" bson:"stock" json:"stock" validate:"gte=0"`
	VendorID       string         `db:"vendor_id" bson:"vendor" json:"vendorId"`
	Images         StringList     `db:"images" bson:"images" json:"images"`
	Rating         Rating         `db:"rating" bson:"rating" json:"rating"`
	Status         string         `db:"status" bson:"status" json:"status" validate:"product_status"`
	Origin         string         `db:"origin" bson:"origin" json:"origin"`
	Certifications StringList     `db:"certifications" bson:"certifications" json:"certifications"`
	Specifications Specifications `db:"specifications" bson:"specifications" json:"specifications"`
	VendorName     string         `db:"vendor_name" bson:"vendorName,omitempty" json:"vendorName,omitempty"`
	Featured       bool           `db:"featured" bson:"featured" json:"featured"`
	CreatedAt      time.Time      `db:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" bson:"updatedAt" json:"updatedAt"`

	Vendor *VendorSummary `db:"-" bson:"-" json:"vendor,omitempty"`
}

// ApplyDefaults fills the fields the schema defaults.
func (p *Product) ApplyDefaults() {
	if p.Unit == "" {
		p.Unit = DefaultProductUnit
	}
	if p.Status == "" {
		p.Status = ProductStatusPending
	}
	if p.Origin == "" {
		p.Origin = DefaultProductOrigin
	}
	if p.Category == "" {
		p.Category = "Other"
	}
	if p.Images == nil {
		p.Images = StringList{}
	}
	if p.Certifications == nil {
		p.Certifications = StringList{}
	}
}

// ProductFilter narrows product listings. Empty fields do not filter.
type ProductFilter struct {
	Vendor   string
	Category string
	Status   string
	Search   string
}

// ProductUpdate is a partial product update. The owning vendor never changes.
type ProductUpdate struct {
	Name           *string         `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Category       *string         `json:"category,omitempty" validate:"omitempty,product_category"`
	Price          *float64        `json:"price,omitempty" validate:"omitempty,gte=0"`
	Unit           *string         `json:"unit,omitempty" validate:"omitempty,product_unit"`
	Stock          *int            `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Images         *StringList     `json:"images,omitempty"`
	Status         *string         `json:"status,omitempty" validate:"omitempty,product_status"`
	Origin         *string         `json:"origin,omitempty"`
	Certifications *StringList     `json:"certifications,omitempty"`
	Specifications *Specifications `json:"specifications,omitempty"`
	Featured       *bool           `json:"featured,omitempty"`
}

func (upd ProductUpdate) Apply(p *Product) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Unit != nil {
		p.Unit = *upd.Unit
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.Images != nil {
		p.Images = *upd.Images
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Origin != nil {
		p.Origin = *upd.Origin
	}
	if upd.Certifications != nil {
		p.Certifications = *upd.Certifications
	}
	if upd.Specifications != nil {
		p.Specifications = *upd.Specifications
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
}
