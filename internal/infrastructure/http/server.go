package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"

	"solswap-service/internal/application"
	"solswap-service/internal/domain"
)

// FaucetService is the slice of the faucet the handlers need.
type FaucetService interface {
	Disburse(ctx context.Context, recipient solana.PublicKey) (application.Disbursement, error)
}

// QuoteFetcher prices a pair on demand, without debouncing.
type QuoteFetcher interface {
	Fetch(ctx context.Context, req application.QuoteRequest) (domain.Quote, error)
}

type Server struct {
	faucet FaucetService
	quotes QuoteFetcher
	ping   func(context.Context) error
}

func NewServer(faucet FaucetService, quotes QuoteFetcher, ping func(context.Context) error) *Server {
	return &Server{faucet: faucet, quotes: quotes, ping: ping}
}

type airdropRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type airdropResponse struct {
	Success     bool    `json:"success"`
	Signature   string  `json:"signature"`
	AmountSOL   float64 `json:"amount_sol"`
	ExplorerURL string  `json:"explorer_url,omitempty"`
}

func (s *Server) Airdrop(w http.ResponseWriter, r *http.Request) {
	var body airdropRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "wallet_address is required")
		return
	}
	recipient, err := solana.PublicKeyFromBase58(body.WalletAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	d, err := s.faucet.Disburse(r.Context(), recipient)
	if err != nil {
		writeFaucetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, airdropResponse{
		Success:     true,
		Signature:   d.Signature.String(),
		AmountSOL:   domain.AssetRef{Decimals: 9}.FromBaseUnits(d.Lamports).InexactFloat64(),
		ExplorerURL: d.ExplorerURL,
	})
}

type quoteResponse struct {
	InputMint      string    `json:"input_mint"`
	OutputMint     string    `json:"output_mint"`
	InAmount       uint64    `json:"in_amount"`
	OutAmount      uint64    `json:"out_amount"`
	PriceImpactPct string    `json:"price_impact_pct"`
	FetchedAt      time.Time `json:"fetched_at"`
}

func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	inputMint, err := solana.PublicKeyFromBase58(q.Get("inputMint"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inputMint")
		return
	}
	outputMint, err := solana.PublicKeyFromBase58(q.Get("outputMint"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outputMint")
		return
	}
	amount := q.Get("amount")
	if amount == "" {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	decimals := intQuery(q.Get("inputDecimals"), 9)
	if decimals < 0 || decimals > 18 {
		writeError(w, http.StatusBadRequest, "invalid inputDecimals")
		return
	}
	slippage := intQuery(q.Get("slippageBps"), 50)

	req := application.QuoteRequest{
		InputAsset:  domain.AssetRef{Mint: inputMint, Decimals: uint8(decimals)},
		OutputAsset: domain.AssetRef{Mint: outputMint},
		Amount:      amount,
		SlippageBps: slippage,
	}
	quote, err := s.quotes.Fetch(r.Context(), req)
	if err != nil {
		if domain.KindOf(err) == domain.KindBadInput {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		writeError(w, http.StatusBadGateway, "quote service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		InputMint:      quote.InputMint.String(),
		OutputMint:     quote.OutputMint.String(),
		InAmount:       quote.InAmount,
		OutAmount:      quote.OutAmount,
		PriceImpactPct: quote.PriceImpact.String(),
		FetchedAt:      quote.FetchedAt,
	})
}

type errorResponse struct {
	Error           string `json:"error"`
	RetryAfterHours int    `json:"retry_after_hours,omitempty"`
	ExplorerURL     string `json:"explorer_url,omitempty"`
}

func writeFaucetError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		writeError(w, http.StatusInternalServerError, "airdrop failed")
		return
	}
	resp := errorResponse{Error: derr.Msg, ExplorerURL: derr.ExplorerURL}
	switch derr.Kind {
	case domain.KindRateLimited:
		resp.RetryAfterHours = domain.CeilHours(derr.Wait)
		writeJSON(w, http.StatusTooManyRequests, resp)
	case domain.KindInsufficientFunds:
		writeJSON(w, http.StatusServiceUnavailable, resp)
	case domain.KindBadInput:
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func intQuery(raw string, def int) int {
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
