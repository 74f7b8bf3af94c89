package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/DanielAnoka/EMS-sub000/internal/cart"
	"github.com/DanielAnoka/EMS-sub000/internal/domain"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	store store.Store
}

func NewCartHandler(st store.Store) *CartHandler {
	return &CartHandler{store: st}
}

type AddChargeRequestDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Identity  string            `json:"identity"`
	Items     []domain.LineItem `json:"items"`
	Total     int64             `json:"total"`
	ItemCount int               `json:"item_count"`
}

// managerFor binds a cart manager to the request identity, hydrating
// that identity's persisted record.
func (h *CartHandler) managerFor(r *http.Request) *cart.Manager {
	return cart.NewManager(h.store, identityFromContext(r.Context()))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	m := h.managerFor(r)
	respondJSON(w, http.StatusOK, cartResponse(m))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddChargeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_charge_id", "charge id must be positive")
		return
	}
	if req.Amount < 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must not be negative")
		return
	}

	m := h.managerFor(r)
	m.AddToCart(r.Context(), domain.Charge{
		ID:       req.ID,
		Name:     req.Name,
		Amount:   req.Amount,
		Duration: req.Duration,
		Status:   req.Status,
	})

	respondJSON(w, http.StatusCreated, cartResponse(m))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	chargeID, err := chargeIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_charge_id", "charge id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m := h.managerFor(r)
	m.UpdateQuantity(r.Context(), chargeID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(m))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	chargeID, err := chargeIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_charge_id", "charge id must be a positive integer")
		return
	}

	m := h.managerFor(r)
	m.RemoveFromCart(r.Context(), chargeID)

	respondJSON(w, http.StatusOK, cartResponse(m))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	m := h.managerFor(r)
	m.ClearCart(r.Context())

	respondJSON(w, http.StatusOK, cartResponse(m))
}

func chargeIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "charge_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

func cartResponse(m *cart.Manager) CartResponseDTO {
	snapshot := m.Snapshot()
	return CartResponseDTO{
		Identity:  m.Identity(),
		Items:     snapshot.Items,
		Total:     snapshot.Total,
		ItemCount: m.ItemCount(),
	}
}
