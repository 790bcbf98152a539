// Package jupiter talks to the Jupiter v6 aggregator API. The quote response
// body is carried through verbatim as the route payload so the swap endpoint
// receives exactly what the quote endpoint produced.
package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"solswap-service/internal/application"
	"solswap-service/internal/domain"
	"solswap-service/internal/infrastructure/httpx"
)

type Client struct {
	base string
	http *httpx.Client
	now  func() time.Time
}

var _ application.QuoteService = (*Client)(nil)

func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &httpx.Client{
			HTTP:           &http.Client{Timeout: timeout},
			MaxElapsedTime: timeout,
		},
		now: time.Now,
	}
}

// quoteView picks the few fields we interpret out of the quote response.
// Everything else stays inside the raw payload.
type quoteView struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
}

func (c *Client) Quote(ctx context.Context, p domain.QuoteParams) (domain.Quote, error) {
	q := url.Values{}
	q.Set("inputMint", p.InputMint.String())
	q.Set("outputMint", p.OutputMint.String())
	q.Set("amount", strconv.FormatUint(p.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(p.SlippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/quote?"+q.Encode(), nil)
	if err != nil {
		return domain.Quote{}, err
	}
	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, req, &raw); err != nil {
		return domain.Quote{}, fmt.Errorf("quote request: %w", err)
	}

	var view quoteView
	if err := json.Unmarshal(raw, &view); err != nil {
		return domain.Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	inAmount, err := strconv.ParseUint(view.InAmount, 10, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("bad inAmount %q", view.InAmount)
	}
	outAmount, err := strconv.ParseUint(view.OutAmount, 10, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("bad outAmount %q", view.OutAmount)
	}
	impact := decimal.Zero
	if view.PriceImpactPct != "" {
		impact, err = decimal.NewFromString(view.PriceImpactPct)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("bad priceImpactPct %q", view.PriceImpactPct)
		}
	}

	return domain.Quote{
		InputMint:   p.InputMint,
		OutputMint:  p.OutputMint,
		InAmount:    inAmount,
		OutAmount:   outAmount,
		PriceImpact: impact,
		Route:       raw,
		FetchedAt:   c.now(),
	}, nil
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

func (c *Client) SwapTransaction(ctx context.Context, q domain.Quote, payer solana.PublicKey) (*solana.Transaction, error) {
	if len(q.Route) == 0 {
		return nil, fmt.Errorf("quote has no route payload")
	}
	body, err := json.Marshal(swapRequest{
		QuoteResponse:    q.Route,
		UserPublicKey:    payer.String(),
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/swap", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp swapResponse
	if err := c.http.DoJSON(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("swap request: %w", err)
	}
	rawTx, err := base64.StdEncoding.DecodeString(resp.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("decode swap transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return nil, fmt.Errorf("parse swap transaction: %w", err)
	}
	return tx, nil
}
