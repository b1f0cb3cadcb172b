package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spv-projection/internal/api/models"
	"spv-projection/internal/projection"
	"spv-projection/internal/store"
)

// ScenarioHandler serves the saved-scenario store
type ScenarioHandler struct {
	store  *store.Store
	runner *projection.RangeRunner
	log    *zap.Logger
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(st *store.Store, log *zap.Logger) *ScenarioHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScenarioHandler{store: st, runner: projection.NewRangeRunner(log), log: log}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	all, err := h.store.List()
	if err != nil {
		h.storeError(c, err)
		return
	}
	out := make([]models.ScenarioInfo, len(all))
	for i, sc := range all {
		out[i] = models.ScenarioInfo{
			ID:         sc.ID.String(),
			Name:       sc.Name,
			Timestamp:  sc.Timestamp,
			HasResults: sc.Results != nil,
		}
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}

// GetScenario handles GET /api/v1/scenarios/:name
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	sc, err := h.store.Load(c.Param("name"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// SaveScenario handles PUT /api/v1/scenarios/:name
func (h *ScenarioHandler) SaveScenario(c *gin.Context) {
	var req models.SaveScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	s, err := resolveSettings(req.Config)
	if err != nil {
		configError(c, err)
		return
	}
	sc := store.Scenario{Name: c.Param("name"), Settings: s}
	if req.Run {
		rng, err := h.runner.Run(s)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "PROJECTION_ERROR", err.Error(), nil)
			return
		}
		sc.Results = rng
	}
	saved, err := h.store.Save(sc)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ScenarioInfo{
		ID:         saved.ID.String(),
		Name:       saved.Name,
		Timestamp:  saved.Timestamp,
		HasResults: saved.Results != nil,
	})
}

// DeleteScenario handles DELETE /api/v1/scenarios/:name
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	if err := h.store.Delete(c.Param("name")); err != nil {
		h.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScenarioHandler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, store.ErrNoName):
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, store.ErrLocked):
		writeError(c, http.StatusLocked, "STORE_LOCKED", err.Error(), nil)
	default:
		h.log.Error("scenario store", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
	}
}

