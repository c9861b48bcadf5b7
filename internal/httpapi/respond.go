package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError converts service/repository errors into HTTP responses.
// Callers get enough to react (insufficient stock includes the product and
// the quantity still available); lock internals stay internal.
func handleServiceError(w http.ResponseWriter, err error) {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrCartItemNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrInventoryNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())

	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Code:  "insufficient_stock",
			Details: map[string]interface{}{
				"product_id": stockErr.ProductID,
				"available":  stockErr.Available,
			},
		})

	case errors.Is(err, repository.ErrStockContention):
		respondError(w, http.StatusServiceUnavailable, "contention",
			"inventory is busy, please retry")

	case errors.Is(err, repository.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, repository.ErrOrderProtected),
		errors.Is(err, repository.ErrInventoryExists),
		errors.Is(err, repository.ErrDuplicateSKU),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		log.Error().Err(err).Msg("unexpected error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
