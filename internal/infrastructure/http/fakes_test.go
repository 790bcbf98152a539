package httpserver

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"solswap-service/internal/application"
	"solswap-service/internal/domain"
)

var _ FaucetService = (*fakeFaucet)(nil)
var _ QuoteFetcher = (*fakeQuotes)(nil)

type fakeFaucet struct {
	lastRecipient solana.PublicKey
	disbursement  application.Disbursement
	err           error
}

func (f *fakeFaucet) Disburse(_ context.Context, recipient solana.PublicKey) (application.Disbursement, error) {
	f.lastRecipient = recipient
	if f.err != nil {
		return application.Disbursement{}, f.err
	}
	return f.disbursement, nil
}

type fakeQuotes struct {
	lastReq application.QuoteRequest
	quote   domain.Quote
	err     error
}

func (f *fakeQuotes) Fetch(_ context.Context, req application.QuoteRequest) (domain.Quote, error) {
	f.lastReq = req
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return f.quote, nil
}

func sampleQuote(in, out solana.PublicKey) domain.Quote {
	return domain.Quote{
		InputMint:   in,
		OutputMint:  out,
		InAmount:    1_000_000_000,
		OutAmount:   142_500_000,
		PriceImpact: decimal.RequireFromString("0.0012"),
		FetchedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
