/*
handlers.go - HTTP handlers for the operation menu and roster data

PURPOSE:
  Exposes the engine's named operations (ingest, strikes, deduct, notify,
  refresh vacations, run-all) plus read/write access to the dashboard,
  params, holidays, and vacation tables. Handlers build the engine
  components per request from the injected collaborators; no state is
  cached between requests.

ERROR MAPPING:
  RateLimitError  -> 429 (message names the cursor parameter to override)
  ErrUserNotFound -> 404
  validation      -> 400
  anything else   -> 500
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/linguedo/strike-engine/engine"
	"github.com/linguedo/strike-engine/ingest"
)

// Handler carries the engine's collaborators.
type Handler struct {
	Store     engine.TabularStore
	Params    engine.ParameterStore
	Mailer    engine.Mailer
	Templates engine.TemplateSource
	Files     ingest.FileSource

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time

	validate *validator.Validate
}

func NewHandler(store engine.TabularStore, params engine.ParameterStore, mailer engine.Mailer, templates engine.TemplateSource, files ingest.FileSource) *Handler {
	return &Handler{
		Store:     store,
		Params:    params,
		Mailer:    mailer,
		Templates: templates,
		Files:     files,
		validate:  validator.New(),
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Component wiring, per request.

func (h *Handler) roster() *engine.Roster          { return &engine.Roster{Store: h.Store} }
func (h *Handler) journal() *engine.PointsJournal  { return &engine.PointsJournal{Store: h.Store} }
func (h *Handler) holidays() *engine.HolidayTable  { return &engine.HolidayTable{Store: h.Store} }
func (h *Handler) vacations() *engine.VacationTable { return &engine.VacationTable{Store: h.Store} }

func (h *Handler) allocator() *engine.VacationAllocator {
	return &engine.VacationAllocator{
		Vacations: h.vacations(),
		Holidays:  h.holidays(),
		Params:    h.Params,
	}
}

func (h *Handler) loader() *ingest.Loader {
	return &ingest.Loader{
		Source:  h.Files,
		Roster:  h.roster(),
		Journal: h.journal(),
		Params:  h.Params,
		Now:     h.Now,
	}
}

func (h *Handler) weekly() *engine.WeeklyStrikeScheduler {
	return &engine.WeeklyStrikeScheduler{
		Roster:    h.roster(),
		Journal:   h.journal(),
		Allocator: h.allocator(),
		Params:    h.Params,
		Now:       h.Now,
	}
}

func (h *Handler) monthly() *engine.MonthlyDeductionScheduler {
	return &engine.MonthlyDeductionScheduler{
		Roster: h.roster(),
		Params: h.Params,
		Now:    h.Now,
	}
}

func (h *Handler) notifier() *engine.NotificationSelector {
	return &engine.NotificationSelector{
		Roster:    h.roster(),
		Allocator: h.allocator(),
		Params:    h.Params,
		Mailer:    h.Mailer,
		Templates: h.Templates,
		Now:       h.Now,
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (h *Handler) RunIngest(w http.ResponseWriter, r *http.Request) {
	report, err := h.loader().Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: report.BatchID, Result: report})
}

func (h *Handler) RunStrikes(w http.ResponseWriter, r *http.Request) {
	report, err := h.weekly().Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString(), Result: report})
}

func (h *Handler) RunDeduction(w http.ResponseWriter, r *http.Request) {
	report, err := h.monthly().Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString(), Result: report})
}

func (h *Handler) DeductOne(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.monthly().DeductOne(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString()})
}

func (h *Handler) RunNotify(w http.ResponseWriter, r *http.Request) {
	report, err := h.notifier().Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString(), Result: report})
}

func (h *Handler) RefreshVacations(w http.ResponseWriter, r *http.Request) {
	if err := h.allocator().RefreshUsedVacations(r.Context(), h.roster(), engine.DateOf(h.now())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString()})
}

// RunAuto is the everything-needed operation: ingest, refresh used
// vacations, weekly strikes on Mondays, monthly deduction on the 1st, then
// notifications. Calendar conditions keep the scheduler guards quiet on a
// daily cadence; a second run on the same Monday still gets the 429.
func (h *Handler) RunAuto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := engine.DateOf(h.now())
	result := map[string]any{}

	ingestReport, err := h.loader().Run(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	result["ingest"] = ingestReport

	if err := h.allocator().RefreshUsedVacations(ctx, h.roster(), today); err != nil {
		writeError(w, err)
		return
	}

	if today.Weekday() == time.Monday {
		strikeReport, err := h.weekly().Run(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		result["strikes"] = strikeReport
	}

	if today.Day() == 1 {
		deductReport, err := h.monthly().Run(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		result["deduction"] = deductReport
	}

	notifyReport, err := h.notifier().Run(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	result["notify"] = notifyReport

	writeJSON(w, http.StatusOK, runResponse{RunID: uuid.NewString(), Result: result})
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.roster().Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := engine.ParamInt(r.Context(), h.Params, engine.ParamVacationLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u, limit)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	roster := h.roster()
	users, err := roster.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	for _, u := range users {
		if u.Username == req.Username {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already on the roster"})
			return
		}
	}

	users = append(users, engine.UserRecord{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		StartDate: engine.ParseDate(req.StartDate),
		EndDate:   engine.ParseDate(req.EndDate),
	})
	if err := roster.Save(r.Context(), users); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// =============================================================================
// PARAMS
// =============================================================================

func (h *Handler) GetParam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, err := h.Params.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

func (h *Handler) SetParam(w http.ResponseWriter, r *http.Request) {
	var req setParamRequest
	if !h.decode(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.Params.Set(r.Context(), name, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": req.Value})
}

// =============================================================================
// HOLIDAYS AND VACATIONS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.holidays().All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]holidayResponse, len(holidays))
	for i, hd := range holidays {
		out[i] = holidayResponse{Date: hd.Date.String(), Name: hd.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req createHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.holidays().Append(r.Context(), []engine.Holiday{{
		Date: engine.ParseDate(req.Date),
		Name: req.Name,
	}})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, holidayResponse{Date: req.Date, Name: req.Name})
}

func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	entries, err := h.vacations().Entries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]vacationResponse, len(entries))
	for i, e := range entries {
		out[i] = vacationResponse{Email: e.Email, StartDate: e.Start.String(), Days: e.Days}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	var req createVacationRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.vacations().Append(r.Context(), []engine.VacationEntry{{
		Email: req.Email,
		Start: engine.ParseDate(req.StartDate),
		Days:  req.Days,
	}})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vacationResponse{Email: req.Email, StartDate: req.StartDate, Days: req.Days})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrParamMissing):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
