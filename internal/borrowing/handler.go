package borrowing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/inventory-lending/internal"
	"github.com/frahmantamala/inventory-lending/internal/transport"
	"github.com/frahmantamala/inventory-lending/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	BorrowItem(ctx context.Context, dto BorrowItemDTO) (*BorrowRecord, error)
	ReturnItem(ctx context.Context, borrowingID int64, dto ReturnItemDTO) (*BorrowRecord, error)
	ListOverdue(ctx context.Context) ([]*BorrowRecord, error)
	ListHistory(ctx context.Context, itemID *int64) ([]*BorrowRecord, error)
	Now() time.Time
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

func (h *Handler) BorrowItem(w http.ResponseWriter, r *http.Request) {
	var dto BorrowItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("BorrowItem: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.Logger.Error("BorrowItem: validation error", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.Service.BorrowItem(r.Context(), dto)
	if err != nil {
		h.Logger.Error("BorrowItem: service error",
			"error", err,
			"item_id", dto.ItemID,
			"borrower_id", dto.BorrowerID,
			"actor_id", internal.UserIDFromContext(r.Context()))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, NewView(record, h.Service.Now()))
}

func (h *Handler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	borrowingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Logger.Error("ReturnItem: invalid borrowing ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid borrowing ID")
		return
	}

	// empty body means "no notes"; the record keeps whatever it has
	var dto ReturnItemDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("ReturnItem: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	record, err := h.Service.ReturnItem(r.Context(), borrowingID, dto)
	if err != nil {
		h.Logger.Error("ReturnItem: service error", "error", err, "borrowing_id", borrowingID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewView(record, h.Service.Now()))
}

func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListOverdue(r.Context())
	if err != nil {
		h.Logger.Error("ListOverdue: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list overdue borrowings")
		return
	}

	now := h.Service.Now()
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"borrowings": NewViews(records, now),
		"checked_at": now,
	})
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	var itemID *int64
	if itemIDStr := r.URL.Query().Get("item_id"); itemIDStr != "" {
		id, err := strconv.ParseInt(itemIDStr, 10, 64)
		if err != nil {
			h.Logger.Error("ListHistory: invalid item_id", "item_id", itemIDStr)
			h.WriteError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		itemID = &id
	}

	records, err := h.Service.ListHistory(r.Context(), itemID)
	if err != nil {
		h.Logger.Error("ListHistory: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list borrowing history")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"borrowings": NewViews(records, h.Service.Now()),
	})
}
