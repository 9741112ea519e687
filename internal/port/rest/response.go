package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/shopspring/decimal"
)

var errMissingProductID = errors.New("product_id is required")

type errorResponse struct {
	Error string `json:"error"`
}

type lineItemResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unit_price"`
	TotalPrice json.Number `json:"total_price"`
}

type cartResponse struct {
	ID         string             `json:"id"`
	Products   []lineItemResponse `json:"products"`
	TotalPrice json.Number        `json:"total_price"`
}

type productResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// money renders a decimal as a bare JSON number without going through float64.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toCartResponse(p *service.CartPayload) cartResponse {
	resp := cartResponse{
		ID:         p.ID,
		Products:   make([]lineItemResponse, 0, len(p.Products)),
		TotalPrice: money(p.TotalPrice),
	}
	for _, line := range p.Products {
		resp.Products = append(resp.Products, lineItemResponse{
			ID:         line.ID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  money(line.UnitPrice),
			TotalPrice: money(line.TotalPrice),
		})
	}
	return resp
}

func toProductResponse(p *entity.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Price: money(p.Price)}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// errorStatus maps service errors to a status code and a client-safe message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrProductNotFound):
		return http.StatusNotFound, entity.ErrProductNotFound.Error()
	case errors.Is(err, entity.ErrItemNotFound):
		return http.StatusNotFound, entity.ErrItemNotFound.Error()
	case errors.Is(err, entity.ErrCartNotFound):
		return http.StatusNotFound, entity.ErrCartNotFound.Error()
	case errors.Is(err, entity.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, entity.ErrInvalidQuantity.Error()
	case errors.Is(err, errMissingProductID):
		return http.StatusBadRequest, errMissingProductID.Error()
	case errors.Is(err, repository.ErrOptimisticLock):
		return http.StatusConflict, "cart was modified concurrently, please retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
