package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"spv-projection/internal/analysis"
	"spv-projection/internal/api/models"
	"spv-projection/internal/config"
	"spv-projection/internal/model"
	"spv-projection/internal/projection"
	"spv-projection/internal/report"
)

// ProjectionHandler handles projection, comparison and report requests
type ProjectionHandler struct {
	log    *zap.Logger
	runner *projection.RangeRunner
	engine *projection.Engine
}

// NewProjectionHandler creates a new projection handler
func NewProjectionHandler(log *zap.Logger) *ProjectionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectionHandler{
		log:    log,
		runner: projection.NewRangeRunner(log),
		engine: projection.New(projection.WithLogger(log)),
	}
}

// RunProjection handles POST /api/v1/projection
func (h *ProjectionHandler) RunProjection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	s, rng, ok := h.run(c, req.Config)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildResponse(s, rng, req.Options.IncludeLedger))
}

// CompareProjections handles POST /api/v1/projection/compare
func (h *ProjectionHandler) CompareProjections(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if req.Base.BaseFile != "" {
		configError(c, errBaseFile)
		return
	}

	variations := make([]analysis.Variation, 0, len(req.Variations))
	var skipped []models.SkippedVariation
	for _, v := range req.Variations {
		merged := config.MergeFiles(req.Base, v.Config)
		s, err := resolveSettings(merged)
		if err != nil {
			skipped = append(skipped, models.SkippedVariation{Name: v.Name, Reason: err.Error()})
			continue
		}
		result, err := h.engine.Run(s)
		if err != nil {
			skipped = append(skipped, models.SkippedVariation{Name: v.Name, Reason: err.Error()})
			continue
		}
		variations = append(variations, analysis.Variation{Name: v.Name, Settings: s, Result: result})
	}
	if len(skipped) > 0 {
		h.log.Info("compare skipped variations", zap.Int("skipped", len(skipped)), zap.Int("ran", len(variations)))
	}

	c.JSON(http.StatusOK, models.CompareResponse{
		Comparison: analysis.RankVariations(variations),
		Skipped:    skipped,
	})
}

// RenderReport handles POST /api/v1/projection/report?format=markdown|html|json
func (h *ProjectionHandler) RenderReport(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	format := c.DefaultQuery("format", "markdown")
	if format != "markdown" && format != "html" && format != "json" {
		writeError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be markdown, html or json", nil)
		return
	}
	s, rng, ok := h.run(c, req.Config)
	if !ok {
		return
	}
	sum := report.Build(req.Config.Name, s, rng)

	switch format {
	case "json":
		b, err := report.JSON(sum)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "REPORT_ERROR", err.Error(), nil)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
	case "html":
		out, err := report.HTML(report.Markdown(sum))
		if err != nil {
			writeError(c, http.StatusInternalServerError, "REPORT_ERROR", err.Error(), nil)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
	default:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(sum)))
	}
}

// run resolves and projects f, writing the error response itself on failure.
func (h *ProjectionHandler) run(c *gin.Context, f config.File) (model.Settings, *model.ScenarioRange, bool) {
	s, err := resolveSettings(f)
	if err != nil {
		configError(c, err)
		return model.Settings{}, nil, false
	}
	rng, err := h.runner.Run(s)
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			configError(c, err)
			return model.Settings{}, nil, false
		}
		h.log.Error("projection failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "PROJECTION_ERROR", err.Error(), nil)
		return model.Settings{}, nil, false
	}
	return s, rng, true
}

func buildResponse(s model.Settings, rng *model.ScenarioRange, includeLedger bool) models.ProjectionResponse {
	resp := models.ProjectionResponse{
		ID:       uuid.NewString(),
		Status:   models.StatusCompleted,
		KPIs:     analysis.Compute(s, rng.Base),
		Warnings: rng.Base.Warnings,
		Range: &model.ScenarioRange{
			Base: withoutLedger(rng.Base),
			Min:  withoutLedger(rng.Min),
			Max:  withoutLedger(rng.Max),
		},
	}
	if resp.Warnings.IsUnderfunded || resp.Warnings.HighLTV {
		resp.Status = models.StatusWarnings
	}
	if rng.Min != nil {
		k := analysis.Compute(s, rng.Min)
		resp.MinKPIs = &k
	}
	if rng.Max != nil {
		k := analysis.Compute(s, rng.Max)
		resp.MaxKPIs = &k
	}
	if includeLedger {
		resp.Ledger = rng.Base.Ledger
	}
	return resp
}

func withoutLedger(r *model.Result) *model.Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Ledger = nil
	return &cp
}
