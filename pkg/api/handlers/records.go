package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/rowguard/pkg/models"
)

// RecordHandler serves /api/v1/records.
type RecordHandler struct{}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler() *RecordHandler {
	return &RecordHandler{}
}

// CreateRecordRequest is the request body for POST /api/v1/records.
type CreateRecordRequest struct {
	ProjectID  string  `json:"project_id" validate:"required"`
	Lithology  string  `json:"lithology" validate:"max=255"`
	TimePeriod string  `json:"time_period" validate:"max=255"`
	Age        float64 `json:"age" validate:"gte=0"`
	Notes      string  `json:"notes,omitempty" validate:"max=1024"`
}

// BulkUpdateRequest is the request body for PATCH /api/v1/records.
type BulkUpdateRequest struct {
	Filter RecordFilter       `json:"filter"`
	Patch  models.RecordPatch `json:"patch"`
}

// RecordFilter mirrors models.RecordFilter in request bodies.
type RecordFilter struct {
	ProjectID  string `json:"project_id,omitempty"`
	Lithology  string `json:"lithology,omitempty"`
	TimePeriod string `json:"time_period,omitempty"`
}

// CountResponse reports how many rows a bulk operation touched.
type CountResponse struct {
	Count int64 `json:"count"`
}

func filterFromQuery(r *http.Request) models.RecordFilter {
	q := r.URL.Query()
	return models.RecordFilter{
		ProjectID:  q.Get("project_id"),
		Lithology:  q.Get("lithology"),
		TimePeriod: q.Get("time_period"),
	}
}

// Create handles POST /api/v1/records. Needs writer on the project.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req CreateRecordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	rec, err := conn.CreateRecord(r.Context(), &models.Record{
		ProjectID:  req.ProjectID,
		Lithology:  req.Lithology,
		TimePeriod: req.TimePeriod,
		Age:        req.Age,
		Notes:      req.Notes,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, rec)
}

// List handles GET /api/v1/records?project_id=&lithology=&time_period=.
// Records the caller cannot see are filtered out, never reported.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	records, err := conn.ListRecords(r.Context(), filterFromQuery(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, records)
}

// Get handles GET /api/v1/records/{id}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	rec, err := conn.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, rec)
}

// Update handles PATCH /api/v1/records/{id}.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var patch models.RecordPatch
	if !decodeJSONBody(w, r, &patch) {
		return
	}

	rec, err := conn.UpdateRecord(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, rec)
}

// UpdateMany handles PATCH /api/v1/records. All matching visible records
// change, or none do.
func (h *RecordHandler) UpdateMany(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req BulkUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	n, err := conn.UpdateRecords(r.Context(), models.RecordFilter(req.Filter), req.Patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, CountResponse{Count: n})
}

// Delete handles DELETE /api/v1/records/{id}. Needs the delete capability.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := conn.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// DeleteMany handles DELETE /api/v1/records?project_id=&...
func (h *RecordHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	n, err := conn.DeleteRecords(r.Context(), filterFromQuery(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, CountResponse{Count: n})
}
