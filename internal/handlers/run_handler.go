package handlers

import (
	"errors"
	"io"
	"net/http"

	"ecommerce-datagen/internal/config"
	"ecommerce-datagen/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateRunRequest overrides the configured stage sizes and seed for one run.
// Omitted fields keep the configured value.
type CreateRunRequest struct {
	Suppliers  *int    `json:"suppliers"`
	Warehouses *int    `json:"warehouses"`
	Products   *int    `json:"products"`
	Customers  *int    `json:"customers"`
	Orders     *int    `json:"orders"`
	Reviews    *int    `json:"reviews"`
	Tickets    *int    `json:"tickets"`
	Seed       *uint64 `json:"seed"`
}

// apply returns defaults with the request's overrides applied.
func (r *CreateRunRequest) apply(defaults config.Counts, seed uint64) services.RunRequest {
	counts := defaults
	for _, o := range []struct {
		src *int
		dst *int
	}{
		{r.Suppliers, &counts.Suppliers},
		{r.Warehouses, &counts.Warehouses},
		{r.Products, &counts.Products},
		{r.Customers, &counts.Customers},
		{r.Orders, &counts.Orders},
		{r.Reviews, &counts.Reviews},
		{r.Tickets, &counts.Tickets},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if r.Seed != nil {
		seed = *r.Seed
	}
	return services.RunRequest{Counts: counts, Seed: seed}
}

// RunHandler exposes generation runs over HTTP
type RunHandler struct {
	runs     *services.RunService
	verifier *services.Verifier
	defaults config.Counts
	seed     uint64
	logger   *logrus.Entry
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs *services.RunService, verifier *services.Verifier, defaults config.Counts, seed uint64, logger *logrus.Entry) *RunHandler {
	return &RunHandler{
		runs:     runs,
		verifier: verifier,
		defaults: defaults,
		seed:     seed,
		logger:   logger,
	}
}

// CreateRun generates a dataset
// @Summary Start a generation run
// @Description Generate one dataset in a single transaction and return its summary
// @Tags Runs
// @Accept json
// @Produce json
// @Param request body CreateRunRequest false "Stage size and seed overrides"
// @Success 201 {object} services.RunSummary
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /runs [post]
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	runReq := req.apply(h.defaults, h.seed)
	if err := runReq.Counts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.runs.Run(c.Request.Context(), runReq)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Generation run failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "generation run failed",
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// GetStats returns the row count of every generated table and the run lock state
// @Summary Row counts
// @Tags Runs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /stats [get]
func (h *RunHandler) GetStats(c *gin.Context) {
	rows, err := h.runs.Stats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to count rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count rows"})
		return
	}

	lock, err := h.runs.LockStatus(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read run lock status")
	}

	var total int64
	for _, n := range rows {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":    rows,
		"total":   total,
		"runLock": lock,
	})
}

// Verify checks the integrity rules against the stored dataset
// @Summary Verify dataset integrity
// @Tags Runs
// @Produce json
// @Success 200 {object} services.VerificationReport
// @Security BearerAuth
// @Router /verify [get]
func (h *RunHandler) Verify(c *gin.Context) {
	report, err := h.verifier.Verify(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     report.OK(),
		"report": report,
	})
}
