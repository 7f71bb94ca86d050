package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store store.Store
	dev   bool
}

func NewHealthHandler(s store.Store, dev bool) *HealthHandler {
	return &HealthHandler{store: s, dev: dev}
}

type healthResp struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// Check reports whether the store answers a ping.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		if !errors.Is(err, common.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		utils.WriteError(w, r, err, h.dev)
		return
	}

	utils.JSON(w, http.StatusOK, healthResp{
		Success:  true,
		Status:   "ok",
		Database: "connected",
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}
