package rest

import (
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 200
	maxPage         = 100000
)

type ProductHandler struct {
	productService service.ProductService
	log            logger.Logger
}

func NewProductHandler(productService service.ProductService, log logger.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, log: log}
}

func (h *ProductHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		code, message := errorStatus(err)
		if code >= http.StatusInternalServerError {
			h.log.Errorf("Failed to get product %s: %v", productID, err)
		}
		respondWithError(w, code, message)
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page > maxPage {
		page = maxPage
	}

	products, err := h.productService.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products":  resp,
		"page":      page,
		"page_size": pageSize,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
