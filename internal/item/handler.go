package item

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/inventory-lending/internal/transport"
	"github.com/frahmantamala/inventory-lending/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateItem(ctx context.Context, dto CreateItemDTO) (*Item, error)
	GetItemByID(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	SearchItems(ctx context.Context, filter SearchItemsDTO) ([]*Item, error)
	UpdateItem(ctx context.Context, id int64, dto UpdateItemDTO) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateItem: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.Logger.Error("CreateItem: validation error", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.Service.CreateItem(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateItem: service error", "error", err, "asset_code", dto.AssetCode)
		h.HandleCatalogError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, it)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	it, err := h.Service.GetItemByID(r.Context(), id)
	if err != nil {
		h.HandleCatalogError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, it)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := SearchItemsDTO{
		Query:           q.Get("query"),
		Condition:       q.Get("condition"),
		StorageLocation: q.Get("storage_location"),
		AvailableOnly:   q.Get("available_only") == "true",
	}

	items, err := h.Service.SearchItems(r.Context(), filter)
	if err != nil {
		h.Logger.Error("SearchItems: service error", "error", err, "query", filter.Query)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var dto UpdateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateItem: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.Logger.Error("UpdateItem: validation error", "error", err, "item_id", id)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.Service.UpdateItem(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateItem: service error", "error", err, "item_id", id)
		h.HandleCatalogError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, it)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
		h.Logger.Error("DeleteItem: service error", "error", err, "item_id", id)
		h.HandleCatalogError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) HandleCatalogError(w http.ResponseWriter, err error) {
	switch err {
	case ErrNotFound, ErrAssetCodeTaken, ErrHasBorrowHistory:
		h.HandleServiceError(w, err)
	default:
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
