package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/config"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
	"github.com/fernwood-lab/studyflow-backend/internal/service/access"
	"github.com/fernwood-lab/studyflow-backend/internal/service/progress"
)

// progressService defines the progress operations needed by StudyHandler.
type progressService interface {
	Start(ctx context.Context, input progress.StartInput) (*domain.ProgressRecord, error)
	Save(ctx context.Context, input progress.SaveInput) (*domain.ProgressRecord, error)
	Complete(ctx context.Context, input progress.CompleteInput) (*progress.CompleteResult, error)
	Get(ctx context.Context, userID uuid.UUID, moduleName string) (*domain.ProgressRecord, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error)
}

// accessService defines the access decisions needed by StudyHandler.
type accessService interface {
	CheckAccess(ctx context.Context, userID uuid.UUID, moduleName string) (access.Decision, error)
	CheckPathAccess(ctx context.Context, userID uuid.UUID, pathName string) (access.Decision, error)
	CurrentModule(ctx context.Context, userID uuid.UUID) (*domain.Module, error)
}

// StudyHandler serves the study-plan REST endpoints: the module list,
// access checks, and the progress transitions. Every mutation runs the
// access check first, so a denial is decided (and audited) before the
// state machine is touched.
type StudyHandler struct {
	progress progressService
	access   accessService
	graph    *domain.ModuleGraph
	maxBody  int64
	log      *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(progressSvc progressService, accessSvc accessService, graph *domain.ModuleGraph, cfg config.StudyConfig, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{
		progress: progressSvc,
		access:   accessSvc,
		graph:    graph,
		maxBody:  cfg.MaxResponseBytes,
		log:      logger.With("handler", "study"),
	}
}

type saveProgressRequest struct {
	Responses map[string]any `json:"responses"`
}

type completeRequest struct {
	Responses map[string]any `json:"responses"`
	Metadata  map[string]any `json:"metadata"`
}

type moduleResponse struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	SequenceOrder   int    `json:"sequenceOrder"`
	RequiresConsent bool   `json:"requiresConsent"`
}

type moduleStatusResponse struct {
	moduleResponse
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type currentModuleResponse struct {
	Module *moduleResponse `json:"module"`
}

// accessGrantedResponse is the positive half of an access decision; the
// negative half is the 403 envelope written by writeDenied.
type accessGrantedResponse struct {
	Accessible bool `json:"accessible"`
	ReviewOnly bool `json:"review_only,omitempty"`
}

type progressRecordResponse struct {
	ID          string         `json:"id"`
	ModuleName  string         `json:"moduleName"`
	Status      string         `json:"status"`
	Responses   map[string]any `json:"responses"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	StartedAt   time.Time      `json:"startedAt"`
	LastSavedAt time.Time      `json:"lastSavedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type completeResponse struct {
	Record     progressRecordResponse `json:"record"`
	NextModule *moduleResponse        `json:"nextModule,omitempty"`
}

type pathResponse struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	ModuleName string `json:"moduleName"`
}

type pathReviewResponse struct {
	Path       pathResponse            `json:"path"`
	ReviewOnly bool                    `json:"reviewOnly"`
	Record     *progressRecordResponse `json:"record,omitempty"`
}

// ListModules handles GET /api/v1/study/modules: the full plan in sequence
// order, joined with the caller's per-module status.
func (h *StudyHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	records, err := h.progress.ListForUser(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	byModule := make(map[string]*domain.ProgressRecord, len(records))
	for _, rec := range records {
		byModule[rec.ModuleName] = rec
	}

	modules := h.graph.Modules()
	out := make([]moduleStatusResponse, 0, len(modules))
	for _, m := range modules {
		item := moduleStatusResponse{
			moduleResponse: toModuleResponse(m),
			Status:         domain.ProgressStatusNotStarted.String(),
		}
		if rec, ok := byModule[m.Name]; ok {
			item.Status = rec.Status.String()
			started := rec.StartedAt
			item.StartedAt = &started
			item.CompletedAt = rec.CompletedAt
		}
		out = append(out, item)
	}

	writeJSON(w, http.StatusOK, out)
}

// Current handles GET /api/v1/study/current. Module is null once the whole
// plan is completed.
func (h *StudyHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	module, err := h.access.CurrentModule(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	var resp currentModuleResponse
	if module != nil {
		m := toModuleResponse(*module)
		resp.Module = &m
	}

	writeJSON(w, http.StatusOK, resp)
}

// CheckAccess handles GET /api/v1/study/modules/{name}/access.
func (h *StudyHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	decision, err := h.access.CheckAccess(r.Context(), userID, r.PathValue("name"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if !decision.Accessible {
		writeDenied(w, decision)
		return
	}

	writeJSON(w, http.StatusOK, accessGrantedResponse{Accessible: true})
}

// Start handles POST /api/v1/study/modules/{name}/start.
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	if !h.requireModuleAccess(w, r, userID, name) {
		return
	}

	record, err := h.progress.Start(r.Context(), progress.StartInput{
		UserID:     userID,
		ModuleName: name,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressRecordResponse(record))
}

// SaveProgress handles PATCH /api/v1/study/modules/{name}/progress. The
// payload is opaque; the only shape constraint is the configured size cap.
func (h *StudyHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	var req saveProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !h.requireModuleAccess(w, r, userID, name) {
		return
	}

	record, err := h.progress.Save(r.Context(), progress.SaveInput{
		UserID:     userID,
		ModuleName: name,
		Responses:  req.Responses,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressRecordResponse(record))
}

// Complete handles POST /api/v1/study/modules/{name}/complete.
func (h *StudyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	req := completeRequest{}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	if !h.requireModuleAccess(w, r, userID, name) {
		return
	}

	result, err := h.progress.Complete(r.Context(), progress.CompleteInput{
		UserID:     userID,
		ModuleName: name,
		Responses:  req.Responses,
		Metadata:   req.Metadata,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := completeResponse{Record: toProgressRecordResponse(result.Record)}
	if result.NextModule != nil {
		m := toModuleResponse(*result.NextModule)
		resp.NextModule = &m
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetProgress handles GET /api/v1/study/modules/{name}/progress. Works on
// completed records: reading your own frozen payload is review access and
// is never gated.
func (h *StudyHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	record, err := h.progress.Get(r.Context(), userID, r.PathValue("name"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressRecordResponse(record))
}

// CheckPathAccess handles GET /api/v1/study/paths/{name}/access.
func (h *StudyHandler) CheckPathAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	decision, err := h.access.CheckPathAccess(r.Context(), userID, r.PathValue("name"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if !decision.Accessible {
		writeDenied(w, decision)
		return
	}

	writeJSON(w, http.StatusOK, accessGrantedResponse{
		Accessible: true,
		ReviewOnly: decision.ReviewOnly,
	})
}

// ReviewPath handles GET /api/v1/study/paths/{name}: the path definition
// plus the caller's record for its backing module. After completion the
// record is the frozen payload; review stays open while writes are gone.
func (h *StudyHandler) ReviewPath(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	decision, err := h.access.CheckPathAccess(r.Context(), userID, name)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if !decision.Accessible {
		writeDenied(w, decision)
		return
	}

	// The positive decision already proved the path exists.
	path, _ := h.graph.PathByName(name)

	resp := pathReviewResponse{
		Path: pathResponse{
			Name:       path.Name,
			Title:      path.Title,
			ModuleName: path.ModuleName,
		},
		ReviewOnly: decision.ReviewOnly,
	}

	record, err := h.progress.Get(r.Context(), userID, path.ModuleName)
	switch {
	case err == nil:
		rec := toProgressRecordResponse(record)
		resp.Record = &rec
	case errors.Is(err, domain.ErrNotFound):
		// Accessible but never started: no payload yet.
	default:
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// requireModuleAccess runs the access decision gate for a mutation. A
// denial is written (and audited by the access service) before the state
// machine is ever touched.
func (h *StudyHandler) requireModuleAccess(w http.ResponseWriter, r *http.Request, userID uuid.UUID, moduleName string) bool {
	decision, err := h.access.CheckAccess(r.Context(), userID, moduleName)
	if err != nil {
		handleError(w, r, h.log, err)
		return false
	}
	if !decision.Accessible {
		writeDenied(w, decision)
		return false
	}
	return true
}

func toModuleResponse(m domain.Module) moduleResponse {
	return moduleResponse{
		Name:            m.Name,
		Title:           m.Title,
		SequenceOrder:   m.SequenceOrder,
		RequiresConsent: m.RequiresConsent,
	}
}

func toProgressRecordResponse(rec *domain.ProgressRecord) progressRecordResponse {
	return progressRecordResponse{
		ID:          rec.ID.String(),
		ModuleName:  rec.ModuleName,
		Status:      rec.Status.String(),
		Responses:   rec.Responses,
		Metadata:    rec.Metadata,
		StartedAt:   rec.StartedAt,
		LastSavedAt: rec.LastSavedAt,
		CompletedAt: rec.CompletedAt,
	}
}
