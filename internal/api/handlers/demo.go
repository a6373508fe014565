package handlers

import (
	"net/http"
	"time"

	"github.com/hugh/teamhub/internal/demo"
	"github.com/hugh/teamhub/pkg/config"
)

type DemoHandler struct {
	cfg config.DemoConfig
	now func() time.Time
}

func NewDemoHandler(cfg config.DemoConfig) *DemoHandler {
	return &DemoHandler{cfg: cfg, now: time.Now}
}

// Status handles GET /api/v1/demo/status
func (h *DemoHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, demo.StatusFor(h.cfg, h.now()), "")
}
