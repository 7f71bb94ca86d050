package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/cinnamart/internal/authz"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
	"github.com/vaughan-dsouza/cinnamart/internal/validation"
)

type ProductHandler struct {
	store store.Store
	dev   bool
}

func NewProductHandler(s store.Store, dev bool) *ProductHandler {
	return &ProductHandler{store: s, dev: dev}
}

// ---------------------- CREATE ----------------------

// Create stores a product. A vendor always owns what they create; an admin
// must name the vendor account that will own it.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	cl := utils.ClaimsFrom(r.Context())
	if cl == nil {
		utils.WriteError(w, r, common.ErrUnauthorized, h.dev)
		return
	}

	var p models.Product
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	// server-owned fields
	p.ID = ""
	p.Rating = models.Rating{}
	p.Vendor = nil
	p.CreatedAt, p.UpdatedAt = time.Time{}, time.Time{}

	switch {
	case cl.Role == models.RoleVendor:
		p.VendorID = cl.UserID
	case p.VendorID == "":
		utils.WriteError(w, r, validation.Errorf("vendorId", "vendorId is required"), h.dev)
		return
	default:
		owner, err := h.store.FindUserByID(r.Context(), p.VendorID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				err = validation.Errorf("vendorId", "vendorId does not reference an existing user")
			}
			utils.WriteError(w, r, err, h.dev)
			return
		}
		if owner.Role != models.RoleVendor {
			utils.WriteError(w, r, validation.Errorf("vendorId", "vendorId must reference a vendor account"), h.dev)
			return
		}
	}

	p.Name = strings.TrimSpace(p.Name)
	p.ApplyDefaults()
	if err := validation.Struct(&p); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	if err := h.store.CreateProduct(r.Context(), &p); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	created, err := h.store.GetProduct(r.Context(), p.ID)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusCreated, dataResp{Success: true, Data: created})
}

// ---------------------- GET ONE ----------------------

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: p})
}

// ---------------------- LIST ----------------------

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.ProductFilter{
		Vendor:   q.Get("vendor"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	products, err := h.store.ListProducts(r.Context(), f)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, listResp{Success: true, Count: len(products), Data: products})
}

// ---------------------- UPDATE ----------------------

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}
	if !authz.CanMutateProduct(utils.ClaimsFrom(r.Context()), existing) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "not authorized to update this product"), h.dev)
		return
	}

	var upd models.ProductUpdate
	if err := utils.DecodeJSON(r, &upd); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}
	if err := validation.Struct(&upd); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	p, err := h.store.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: p})
}

// ---------------------- DELETE ----------------------

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}
	if !authz.CanMutateProduct(utils.ClaimsFrom(r.Context()), existing) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "not authorized to delete this product"), h.dev)
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, messageResp{Success: true, Message: "Product deleted"})
}
