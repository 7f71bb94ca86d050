package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/authz"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
	"github.com/vaughan-dsouza/cinnamart/internal/validation"
)

type UserHandler struct {
	svc     *auth.Service
	store   store.Store
	cookies utils.CookieOptions
	dev     bool
}

func NewUserHandler(svc *auth.Service, s store.Store, cookies utils.CookieOptions, dev bool) *UserHandler {
	return &UserHandler{svc: svc, store: s, cookies: cookies, dev: dev}
}

type registerResp struct {
	Success bool           `json:"success"`
	Data    models.Profile `json:"data"`
	Token   string         `json:"token,omitempty"`
}

// updateUserReq accepts password and role so that clients sending a whole
// profile are not rejected, but neither is ever applied here.
type updateUserReq struct {
	models.UserUpdate
	Password *string      `json:"password,omitempty"`
	Role     *models.Role `json:"role,omitempty"`
}

type roleReq struct {
	Role models.Role `json:"role"`
}

// ---------------------- CREATE ----------------------

// Create registers a user. Anonymous callers are signed in as the new user;
// an admin creating an account keeps their own session.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.NewUser
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	caller := utils.CallerRole(r.Context())
	sess, err := h.svc.Register(r.Context(), body, caller)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	resp := registerResp{Success: true, Data: sess.User}
	if caller == "" {
		if err := utils.SetSessionCookies(w, sess.Token, sess.User, h.cookies); err != nil {
			utils.WriteError(w, r, err, h.dev)
			return
		}
		resp.Token = sess.Token
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// ---------------------- LIST ----------------------

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		utils.WriteError(w, r, validation.Errorf("role", "role must be one of customer, vendor, admin"), h.dev)
		return
	}

	cl := utils.ClaimsFrom(r.Context())
	if !authz.CanListUsers(cl, role) {
		if cl == nil {
			utils.WriteError(w, r, common.Errorf(common.ErrUnauthorized, "not authorized, no token"), h.dev)
			return
		}
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "only an admin can list %s accounts", listLabel(role)), h.dev)
		return
	}

	users, err := h.store.ListUsers(r.Context(), role)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	profiles := models.Profiles(users)
	utils.JSON(w, http.StatusOK, listResp{Success: true, Count: len(profiles), Data: profiles})
}

func listLabel(role models.Role) string {
	if role == "" {
		return "all"
	}
	return role.String()
}

// ---------------------- GET ONE ----------------------

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authz.CanAccessUser(utils.ClaimsFrom(r.Context()), id) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "not authorized to access this user"), h.dev)
		return
	}

	u, err := h.store.FindUserByID(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: u.Profile()})
}

// ---------------------- UPDATE ----------------------

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cl := utils.ClaimsFrom(r.Context())
	if !authz.CanAccessUser(cl, id) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "not authorized to update this user"), h.dev)
		return
	}

	var body updateUserReq
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}
	if body.Password != nil || body.Role != nil {
		logging.Ctx(r.Context()).Debug().Str("user_id", id).Msg("update: password and role fields ignored")
	}

	upd := body.UserUpdate
	if upd.IsActive != nil && !authz.IsAdmin(cl) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "only an admin can change account status"), h.dev)
		return
	}
	if err := validation.Struct(&upd); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	u, err := h.store.UpdateUser(r.Context(), id, upd)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: u.Profile()})
}

// ---------------------- DELETE ----------------------

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cl := utils.ClaimsFrom(r.Context())
	if !authz.CanAccessUser(cl, id) {
		utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "not authorized to delete this user"), h.dev)
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	if cl.UserID == id {
		if err := h.svc.Logout(r.Context(), cl); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("delete: revoke own session failed")
		}
		utils.ClearSessionCookies(w, h.cookies.Secure)
	}

	utils.JSON(w, http.StatusOK, messageResp{Success: true, Message: "User deleted"})
}

// ---------------------- ROLE ----------------------

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var body roleReq
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	p, err := h.svc.ChangeRole(r.Context(), utils.ClaimsFrom(r.Context()), chi.URLParam(r, "id"), body.Role)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: p})
}
