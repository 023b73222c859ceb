package api

import (
	"net/http"

	"github.com/erazemk/arsenal/internal/inventory"
)

// RecordsHandler serves the movement records and the balance table.
type RecordsHandler struct {
	Inventory *inventory.Service
}

type statusRequest struct {
	Status string `json:"status"`
}

// List returns a handler for GET on the record collection of the given kind.
// Query parameters: base_id, equipment_type_id, start_date, end_date and,
// for transfers, status.
func (h *RecordsHandler) List(kind string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		actor, _ := ActorFrom(r.Context())
		list, err := h.Inventory.QueryList(r.Context(), actor, kind, f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, list)
	})
}

// CreatePurchase handles POST /api/purchases.
func (h *RecordsHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var in inventory.PurchaseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	p, err := h.Inventory.CreatePurchase(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, p)
}

// CreateTransfer handles POST /api/transfers.
func (h *RecordsHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var in inventory.TransferInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	t, err := h.Inventory.CreateTransfer(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// UpdateTransferStatus handles PATCH /api/transfers/{id}/status.
func (h *RecordsHandler) UpdateTransferStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	t, err := h.Inventory.UpdateTransferStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

// CreateAssignment handles POST /api/assignments.
func (h *RecordsHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var in inventory.AssignmentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	a, err := h.Inventory.CreateAssignment(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, a)
}

// CreateExpenditure handles POST /api/expenditures.
func (h *RecordsHandler) CreateExpenditure(w http.ResponseWriter, r *http.Request) {
	var in inventory.ExpenditureInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	e, err := h.Inventory.CreateExpenditure(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, e)
}

// Metrics handles GET /api/metrics: the balance table for the filter window.
func (h *RecordsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	m, err := h.Inventory.QueryMetrics(r.Context(), actor, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}
