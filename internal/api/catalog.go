package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/authz"
	"github.com/erazemk/arsenal/internal/imaging"
	"github.com/erazemk/arsenal/internal/inventory"
)

// CatalogHandler serves bases and equipment types.
type CatalogHandler struct {
	Inventory *inventory.Service
}

type createBaseRequest struct {
	Name string `json:"name"`
}

type createEquipmentTypeRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ListBases handles GET /api/bases.
func (h *CatalogHandler) ListBases(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	bases, err := h.Inventory.ListBases(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, bases)
}

// CreateBase handles POST /api/bases.
func (h *CatalogHandler) CreateBase(w http.ResponseWriter, r *http.Request) {
	var req createBaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	base, err := h.Inventory.CreateBase(r.Context(), actor, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, base)
}

// ListEquipmentTypes handles GET /api/equipment-types.
func (h *CatalogHandler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	types, err := h.Inventory.ListEquipmentTypes(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types)
}

// CreateEquipmentType handles POST /api/equipment-types.
func (h *CatalogHandler) CreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	et, err := h.Inventory.CreateEquipmentType(r.Context(), actor, req.Name, req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, et)
}

// UploadImage handles PUT /api/equipment-types/{id}/image. The multipart
// "image" field is resized and stored as JPEG.
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if !authz.CanManageCatalog(actor) {
		writeError(w, r, apperr.Unauthorized("only admins may change equipment images"))
		return
	}

	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Inventory.SetEquipmentTypeImage(r.Context(), actor, id, photo.Data, photo.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment image uploaded", "user", actor.Username, "equipment_type_id", id,
		"width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/equipment-types/{id}/image.
func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	data, mime, err := h.Inventory.EquipmentTypeImage(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
