package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alphatracker/backend/internal/models"
)

// createTradeRequest is the explicit input schema for POST /trades. The
// client form submits numeric fields as raw strings; coercion happens here,
// after validation, never in the store.
type createTradeRequest struct {
	Ticker     string `json:"ticker" validate:"required"`
	EntryPrice string `json:"entry_price" validate:"required,numeric"`
	Shares     string `json:"shares" validate:"required,number"`
	TradeType  string `json:"trade_type" validate:"omitempty,oneof=LONG SHORT"`
	Setup      string `json:"setup"`
	UserID     string `json:"user_id"`
}

// newValidator reports violations under json field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	entryPrice, err := decimal.NewFromString(strings.TrimSpace(req.EntryPrice))
	if err != nil {
		writeError(w, http.StatusBadRequest, "entry_price must be a decimal number")
		return
	}
	shares, err := strconv.Atoi(strings.TrimSpace(req.Shares))
	if err != nil {
		writeError(w, http.StatusBadRequest, "shares must be an integer")
		return
	}

	tradeType := req.TradeType
	if tradeType == "" {
		tradeType = models.TradeTypeLong
	}

	trade := &models.Trade{
		Ticker:     strings.ToUpper(strings.TrimSpace(req.Ticker)),
		EntryPrice: entryPrice,
		Shares:     shares,
		TradeType:  tradeType,
		Setup:      req.Setup,
	}
	if uid := s.bodyIdentity(r, req.UserID); uid != "" {
		trade.UserID = &uid
	}

	created, err := s.trades.Create(r.Context(), trade)
	if err != nil {
		s.log.Error("create trade failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error saving trade")
		return
	}

	if s.notify != nil && s.notify.Enabled() {
		go s.notify.TradeLogged(created)
	}

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	userID := s.identity(r)
	if userID == "" {
		// Fail closed: without an identity, never leak anyone's trades.
		writeJSON(w, http.StatusOK, []models.Trade{})
		return
	}

	trades, err := s.trades.ListByUser(r.Context(), userID)
	if err != nil {
		s.log.Error("list trades failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

// handleDeleteTrade removes a trade by id. The delete is idempotent: removing
// an id that no longer exists still reports success. When the request carries
// an identity the delete is scoped to rows that identity owns.
func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	deleted, err := s.trades.Delete(r.Context(), id, s.identity(r))
	if err != nil {
		s.log.Error("delete trade failed", zap.Int64("trade_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete trade")
		return
	}
	if deleted == 0 {
		s.log.Debug("delete matched no rows", zap.Int64("trade_id", id))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Trade deleted"})
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	userID := s.identity(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, []models.AllocationSlice{})
		return
	}

	slices, err := s.trades.Allocation(r.Context(), userID)
	if err != nil {
		s.log.Error("allocation query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch allocation")
		return
	}
	if slices == nil {
		slices = []models.AllocationSlice{}
	}
	writeJSON(w, http.StatusOK, slices)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := s.identity(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, &models.TradeStats{})
		return
	}

	stats, err := s.trades.Stats(r.Context(), userID)
	if err != nil {
		s.log.Error("stats query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// bodyIdentity prefers the token-derived identity over a user_id carried in
// the request body.
func (s *Server) bodyIdentity(r *http.Request, bodyUserID string) string {
	if uid, ok := r.Context().Value(identityKey{}).(string); ok && uid != "" {
		return uid
	}
	return bodyUserID
}

// validationMessage folds validator violations into the wire-level error
// payload: required-field misses are reported together, anything else by the
// first offending field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return "missing required fields: " + strings.Join(missing, ", ")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "numeric", "number":
		return fmt.Sprintf("%s must be numeric", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
