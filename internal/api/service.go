// Package api provides the HTTP handlers for running calculators, reading
// stored calculations, and streaming completion events over WebSocket.
//
// Calculators themselves are pure; this layer adds persistence, metrics,
// and broadcasting around them. Summary money values use shopspring/decimal
// at this boundary.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwheel/calc-engine/internal/blackscholes"
	"github.com/finwheel/calc-engine/internal/compound"
	"github.com/finwheel/calc-engine/internal/config"
	"github.com/finwheel/calc-engine/internal/debtplan"
	"github.com/finwheel/calc-engine/internal/fire"
	"github.com/finwheel/calc-engine/internal/metrics"
	"github.com/finwheel/calc-engine/internal/model"
	"github.com/finwheel/calc-engine/internal/mortgage"
	"github.com/finwheel/calc-engine/internal/options"
	"github.com/finwheel/calc-engine/internal/rentbuy"
	"github.com/finwheel/calc-engine/internal/store"
)

// Service handles calculator requests. Pass nil for hub if WebSocket
// broadcasting is not needed.
type Service struct {
	store store.Store
	hub   *WSHub
	mc    config.MonteCarlo
}

// NewService creates a new calculator service.
func NewService(st store.Store, hub *WSHub, mc config.MonteCarlo) *Service {
	return &Service{store: st, hub: hub, mc: mc}
}

// Register mounts the calculator and history endpoints on r.
func (s *Service) Register(r chi.Router) {
	r.Post("/calc/fire/montecarlo", s.RunMonteCarlo)
	r.Post("/calc/options/implied-vol", s.SolveImpliedVol)
	r.Post("/calc/{calculator}", s.RunCalculator)
	r.Get("/calc/{calculator}/defaults", s.GetDefaults)
	r.Get("/calculations/stats", s.GetStats)
	r.Get("/calculations/{calcID}", s.GetCalculation)
	r.Get("/calculations", s.ListCalculations)
}

// CalcResponse wraps a calculator result with the stored record's ID so the
// run can be fetched again or shared.
type CalcResponse struct {
	ID     string      `json:"id"`
	Kind   model.Kind  `json:"kind"`
	Result interface{} `json:"result"`
}

// RunCalculator handles POST /api/v1/calc/{calculator}
func (s *Service) RunCalculator(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(chi.URLParam(r, "calculator"))
	start := time.Now()

	var result interface{}
	var summary model.Summary
	var inputs interface{}
	var err error

	switch kind {
	case model.KindMortgage:
		var in mortgage.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *mortgage.Result
		if res, err = mortgage.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"loan_amount":     cents(res.LoanAmount),
				"monthly_payment": cents(res.MonthlyPayment.Total),
				"total_interest":  cents(res.TotalInterest),
			}
		}

	case model.KindCompound:
		var in compound.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *compound.Result
		if res, err = compound.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"final_balance":     cents(res.FinalBalance),
				"total_contributed": cents(res.TotalContributed),
				"total_earnings":    cents(res.TotalEarnings),
			}
		}

	case model.KindDebts:
		var in debtplan.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *debtplan.Result
		if res, err = debtplan.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"total_interest_paid": cents(res.TotalInterestPaid),
				"total_months":        decimal.NewFromInt(int64(res.TotalMonths)),
				"interest_saved":      cents(res.InterestSaved),
			}
		}

	case model.KindFire:
		var in fire.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *fire.Result
		if res, err = fire.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"fire_number":       cents(res.FireNumber),
				"coast_fire_number": cents(res.CoastFireNumber),
				"years_to_fire":     decimal.NewFromInt(int64(res.YearsToFire)),
			}
		}

	case model.KindOptions:
		var in options.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *options.Result
		if res, err = options.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"capital_required": cents(res.CapitalRequired),
			}
			if res.MaxProfit != nil {
				summary["max_profit"] = cents(*res.MaxProfit)
			}
			if res.MaxLoss != nil {
				summary["max_loss"] = cents(*res.MaxLoss)
			}
		}

	case model.KindRentBuy:
		var in rentbuy.Inputs
		if !decode(w, r, &in) {
			return
		}
		inputs = in
		var res *rentbuy.Result
		if res, err = rentbuy.Compute(in); err == nil {
			result = res
			summary = model.Summary{
				"final_buy_net_worth":  cents(res.FinalBuyNetWorth),
				"final_rent_net_worth": cents(res.FinalRentNetWorth),
				"monthly_payment":      cents(res.MonthlyMortgagePayment),
			}
		}

	default:
		writeError(w, "unknown calculator: "+string(kind), http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.ObserveCalculation(string(kind), start)
	id := s.persist(r, kind, inputs, summary)
	writeJSON(w, http.StatusOK, CalcResponse{ID: id, Kind: kind, Result: result})
}

// MonteCarloRequest is the JSON body for POST /calc/fire/montecarlo.
// Paths above the configured maximum are clamped, not rejected.
type MonteCarloRequest struct {
	fire.Inputs
	Paths int   `json:"paths"`
	Seed  int64 `json:"seed"`
}

// RunMonteCarlo handles POST /api/v1/calc/fire/montecarlo
func (s *Service) RunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req MonteCarloRequest
	if !decode(w, r, &req) {
		return
	}
	start := time.Now()

	paths := req.Paths
	if paths <= 0 {
		paths = s.mc.Paths
	}
	if paths > s.mc.MaxPaths {
		paths = s.mc.MaxPaths
	}

	res, err := fire.MonteCarlo(req.Inputs, fire.MonteCarloConfig{
		Paths:      paths,
		Workers:    s.mc.Workers,
		Volatility: s.mc.Volatility,
		Seed:       req.Seed,
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.ObserveCalculation(string(model.KindMonteCarlo), start)
	metrics.MonteCarloPaths.Add(float64(paths))
	slog.Info("monte carlo finished",
		"paths", paths, "success_rate", res.SuccessRate,
		"elapsed", time.Since(start))

	summary := model.Summary{
		"success_rate": decimal.NewFromFloat(res.SuccessRate).Round(2),
		"median_final": cents(res.P50[len(res.P50)-1]),
	}
	id := s.persist(r, model.KindMonteCarlo, req, summary)
	writeJSON(w, http.StatusOK, CalcResponse{ID: id, Kind: model.KindMonteCarlo, Result: res})
}

// ImpliedVolRequest is the JSON body for POST /calc/options/implied-vol.
type ImpliedVolRequest struct {
	MarketPrice      float64                 `json:"market_price"`
	Spot             float64                 `json:"spot"`
	Strike           float64                 `json:"strike"`
	DaysToExpiration int                     `json:"days_to_expiration"`
	RiskFreeRate     float64                 `json:"risk_free_rate"`
	Type             blackscholes.OptionType `json:"type"`
}

// ImpliedVolResponse carries the solved volatility as a percentage, or null
// when the solver did not converge.
type ImpliedVolResponse struct {
	ImpliedVolatility *float64 `json:"implied_volatility"`
}

// SolveImpliedVol handles POST /api/v1/calc/options/implied-vol.
// Non-convergence is a valid answer, not an error: the response carries
// null and HTTP 200.
func (s *Service) SolveImpliedVol(w http.ResponseWriter, r *http.Request) {
	var req ImpliedVolRequest
	if !decode(w, r, &req) {
		return
	}

	iv, err := blackscholes.ImpliedVolatility(
		req.MarketPrice, req.Spot, req.Strike,
		float64(req.DaysToExpiration)/365, req.RiskFreeRate/100, req.Type,
	)
	if errors.Is(err, blackscholes.ErrNoConvergence) {
		writeJSON(w, http.StatusOK, ImpliedVolResponse{})
		return
	}
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	pct := iv * 100
	writeJSON(w, http.StatusOK, ImpliedVolResponse{ImpliedVolatility: &pct})
}

// GetDefaults handles GET /api/v1/calc/{calculator}/defaults
func (s *Service) GetDefaults(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(chi.URLParam(r, "calculator"))

	var defaults interface{}
	switch kind {
	case model.KindMortgage:
		defaults = mortgage.DefaultInputs()
	case model.KindCompound:
		defaults = compound.DefaultInputs()
	case model.KindDebts:
		defaults = debtplan.DefaultInputs()
	case model.KindFire, model.KindMonteCarlo:
		defaults = fire.DefaultInputs()
	case model.KindOptions:
		defaults = options.DefaultInputs()
	case model.KindRentBuy:
		defaults = rentbuy.DefaultInputs()
	default:
		writeError(w, "unknown calculator: "+string(kind), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, defaults)
}

// GetCalculation handles GET /api/v1/calculations/{calcID}
func (s *Service) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := s.store.GetCalculation(r.Context(), chi.URLParam(r, "calcID"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "calculation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "failed to load calculation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, calc)
}

// StatsResponse reports how many runs are stored per calculator.
type StatsResponse struct {
	Counts map[model.Kind]int `json:"counts"`
	Total  int                `json:"total"`
}

// GetStats handles GET /api/v1/calculations/stats
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByKind(r.Context())
	if err != nil {
		writeError(w, "failed to count calculations", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{Counts: counts}
	if resp.Counts == nil {
		resp.Counts = map[model.Kind]int{}
	}
	for _, n := range counts {
		resp.Total += n
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListCalculations handles GET /api/v1/calculations?limit=
func (s *Service) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	calcs, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, "failed to list calculations", http.StatusInternalServerError)
		return
	}
	if calcs == nil {
		calcs = []model.Calculation{}
	}

	writeJSON(w, http.StatusOK, calcs)
}

// persist stores the run and broadcasts its summary. History is best-effort:
// a storage failure is logged and the calculation result still returned.
func (s *Service) persist(r *http.Request, kind model.Kind, inputs interface{}, summary model.Summary) string {
	calc := &model.Calculation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	if data, err := json.Marshal(inputs); err == nil {
		calc.Inputs = data
	}

	if err := s.store.SaveCalculation(r.Context(), calc); err != nil {
		slog.Error("calculation store failed", "kind", kind, "err", err)
	} else {
		metrics.StoredCalculations.WithLabelValues(string(kind)).Inc()
		slog.Info("calculation stored", "id", calc.ID, "kind", kind)
	}

	if s.hub != nil {
		s.hub.Broadcast(WSMessage{
			Type:    "calculation_completed",
			ID:      calc.ID,
			Kind:    kind,
			Summary: summary,
		})
	}
	return calc.ID
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// cents rounds a float money amount to an exact two-place decimal.
func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
