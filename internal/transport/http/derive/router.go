package derivehttp

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"bpxgen/internal/bpx"
	"bpxgen/internal/export"
	"bpxgen/internal/logger"
	"bpxgen/internal/params"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store"

	"github.com/gin-gonic/gin"
)

const maxListLimit = 500

// Router exposes derivations and the run history.
type Router struct {
	deriver Deriver
	runs    store.RunRepository
	root    string
}

func NewRouter(d Deriver, runs store.RunRepository, root string) *Router {
	return &Router{deriver: d, runs: runs, root: root}
}

// Register mounts the routes under group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/derive", r.handleDerive)
	group.GET("/runs", r.handleListRuns)
	group.GET("/runs/:id", r.handleRunByID)
}

func (r *Router) handleDerive(c *gin.Context) {
	var body DeriveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	req, err := body.request()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Path, err = r.resolvePath(req.Path); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res, err := r.deriver.GetParams(c.Request.Context(), req)
	runID := r.record(c, req, res, err)
	if err != nil {
		resp := ErrorResponse{RunID: runID, Error: err.Error()}
		var se *pipeline.StageError
		if errors.As(err, &se) {
			resp.Stage = se.Stage
		}
		c.JSON(statusFor(err), resp)
		return
	}

	doc := export.NewDocument(res)
	resp := DeriveResponse{
		RunID:    runID,
		Source:   r.relative(res.Source),
		SOC:      res.SOC,
		Model:    doc.Model,
		Summary:  export.Summary(res),
		Stages:   doc.Stages,
		Warnings: res.Warnings,
	}
	if body.IncludeParameters {
		resp.Parameters = doc.Parameters
	}
	c.JSON(http.StatusOK, resp)
}

// record stores the run when a repository is configured. Storage failures
// are logged and never fail the request.
func (r *Router) record(c *gin.Context, req pipeline.Request, res *pipeline.Result, derr error) string {
	if r.runs == nil {
		return ""
	}
	rec := store.NewRunRecord(req, res, derr)
	rec.Source = r.relative(rec.Source)
	rec.Request.Path = r.relative(rec.Request.Path)
	if err := r.runs.SaveRun(c.Request.Context(), &rec); err != nil {
		logger.Warnf("save run %s failed: %v", rec.ID, err)
		return ""
	}
	return rec.ID
}

func (r *Router) handleListRuns(c *gin.Context) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "run history is not enabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	runs, err := r.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (r *Router) handleRunByID(c *gin.Context) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "run history is not enabled"})
		return
	}
	rec, err := r.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// resolvePath maps a request path onto the served directory and rejects
// paths that leave it.
func (r *Router) resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if r.root == "" {
		return path, nil
	}
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("path %q must be relative to the served directory", path)
	}
	return filepath.Join(r.root, path), nil
}

func (r *Router) relative(path string) string {
	if r.root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return rel
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrConfig),
		errors.Is(err, pipeline.ErrOptionConflict),
		errors.Is(err, bpx.ErrUnknownSet),
		errors.Is(err, bpx.ErrNotParent):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrDataAvailability),
		errors.Is(err, pipeline.ErrPhysicalConstraint),
		errors.Is(err, params.ErrMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
