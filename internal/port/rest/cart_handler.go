package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
)

const maxRequestBodyBytes = 1 << 20

// flexString accepts both JSON strings and JSON numbers, so clients may send
// "product_id": 7 or "product_id": "7".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(raw)
	return nil
}

type itemRequest struct {
	ProductID flexString `json:"product_id"`
	Quantity  flexString `json:"quantity"`
}

type CartHandler struct {
	cartService service.CartService
	log         logger.Logger
}

func NewCartHandler(cartService service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, log: log}
}

// HandleAddItem increments the quantity of a product in the session cart.
func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	h.handleUpsert(w, r, h.cartService.AddItem)
}

// HandleSetItem sets the quantity of a product in the session cart.
func (h *CartHandler) HandleSetItem(w http.ResponseWriter, r *http.Request) {
	h.handleUpsert(w, r, h.cartService.SetItemQuantity)
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	payload, err := h.cartService.GetCart(r.Context(), cartID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toCartResponse(payload))
}

// HandleRemoveItem removes a product from the session cart. The product id comes
// from the path, or from the body or query on DELETE /cart/remove_item.
func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		req, err := decodeItemRequest(w, r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		productID = req.productID
	}
	if productID == "" {
		h.handleError(w, r, errMissingProductID)
		return
	}

	payload, err := h.cartService.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toCartResponse(payload))
}

type upsertFunc func(ctx context.Context, cartID, productID, rawQuantity string) (*service.CartPayload, error)

func (h *CartHandler) handleUpsert(w http.ResponseWriter, r *http.Request, upsert upsertFunc) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	req, err := decodeItemRequest(w, r)
	if err != nil {
		h.log.Warnf("Failed to decode cart request: %v", err)
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.productID == "" {
		h.handleError(w, r, errMissingProductID)
		return
	}

	payload, err := upsert(r.Context(), cartID, req.productID, req.quantity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toCartResponse(payload))
}

func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cartID, ok := CartIDFromContext(r.Context())
	if !ok {
		h.log.Error("No cart id in request context; session middleware not installed?")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
	return cartID, ok
}

func (h *CartHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := errorStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.Errorw("Cart request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondWithError(w, code, message)
}

type parsedItemRequest struct {
	productID string
	quantity  string
}

// decodeItemRequest reads product_id and quantity from a JSON body, falling back
// to form and query values for anything the body did not carry.
func decodeItemRequest(w http.ResponseWriter, r *http.Request) (parsedItemRequest, error) {
	var req itemRequest
	if isJSON(r) && r.Body != nil {
		body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return parsedItemRequest{}, fmt.Errorf("decode item request: %w", err)
		}
	}

	parsed := parsedItemRequest{
		productID: strings.TrimSpace(string(req.ProductID)),
		quantity:  strings.TrimSpace(string(req.Quantity)),
	}
	if parsed.productID == "" {
		parsed.productID = strings.TrimSpace(r.FormValue("product_id"))
	}
	if parsed.quantity == "" {
		parsed.quantity = strings.TrimSpace(r.FormValue("quantity"))
	}
	return parsed, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}
