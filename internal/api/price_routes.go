package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type priceResponse struct {
	Price float64 `json:"price"`
}

// handlePrice proxies the quote collaborator with the server-held API key and
// forwards the current price as-is. A zero price is passed through; the
// client treats it as ticker-not-found.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	price, err := s.quotes.GetQuote(r.Context(), ticker)
	if err != nil {
		s.log.Error("price lookup failed", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching price")
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{Price: price})
}
