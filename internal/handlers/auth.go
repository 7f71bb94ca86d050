package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

type AuthHandler struct {
	svc     *auth.Service
	cookies utils.CookieOptions
	dev     bool
}

func NewAuthHandler(svc *auth.Service, cookies utils.CookieOptions, dev bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, dev: dev}
}

// ----------- Request/Response DTOs -------------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type sessionResp struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Token   string         `json:"token,omitempty"`
	User    models.Profile `json:"user"`
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	if err := utils.SetSessionCookies(w, sess.Token, sess.User, h.cookies); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, sessionResp{
		Success: true,
		Message: "Login successful",
		Token:   sess.Token,
		User:    sess.User,
	})
}

// -------------- LOGOUT -----------------------

// Logout revokes the presented token, if any, and always clears the cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), utils.ClaimsFrom(r.Context())); err != nil {
		// the cookies still go away; the token lapses at its expiry
		logging.Ctx(r.Context()).Error().Err(err).Msg("logout: revoke failed")
	}

	utils.ClearSessionCookies(w, h.cookies.Secure)
	utils.JSON(w, http.StatusOK, messageResp{Success: true, Message: "Logged out"})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cl := utils.ClaimsFrom(r.Context())
	if cl == nil {
		utils.WriteError(w, r, common.ErrUnauthorized, h.dev)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), cl)
	if err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, dataResp{Success: true, Data: user})
}

// -------------- PASSWORD (protected) ----------

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	cl := utils.ClaimsFrom(r.Context())
	if cl == nil {
		utils.WriteError(w, r, common.ErrUnauthorized, h.dev)
		return
	}

	var req passwordReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), cl.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, messageResp{Success: true, Message: "Password updated"})
}
