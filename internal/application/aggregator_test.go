package application

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"solswap-service/internal/domain"
)

func pairAssets() (domain.AssetRef, domain.AssetRef) {
	base := domain.AssetRef{Mint: solana.NewWallet().PublicKey(), Symbol: "DMT", Decimals: 6}
	quote := domain.AssetRef{Mint: solana.NewWallet().PublicKey(), Symbol: "WSOL", Decimals: 9}
	return base, quote
}

func Test_Fetch_ConvertsToBaseUnits(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil)

	_, err := agg.Fetch(context.Background(), QuoteRequest{
		InputAsset:  quote,
		OutputAsset: base,
		Amount:      "1.5",
		SlippageBps: 100,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1500000000), svc.lastParams.Amount)
	require.Equal(t, 100, svc.lastParams.SlippageBps)
	require.Equal(t, quote.Mint, svc.lastParams.InputMint)
	require.Equal(t, base.Mint, svc.lastParams.OutputMint)
}

func Test_Fetch_BadAmount_NoNetworkCall(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil)

	for _, amount := range []string{"", "abc", "0", "-1", "0.0000001"} {
		_, err := agg.Fetch(context.Background(), QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: amount})
		require.Error(t, err, "amount %q", amount)
		require.ErrorIs(t, err, ErrBadAmount)
		require.Equal(t, domain.KindBadInput, domain.KindOf(err))
	}
	require.Equal(t, 0, svc.callCount())
}

func Test_Fetch_NetworkFailureMapped(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{err: context.DeadlineExceeded}
	agg := NewAggregator(svc, nil)

	_, err := agg.Fetch(context.Background(), QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: "1"})
	require.Error(t, err)
	require.Equal(t, domain.KindNetwork, domain.KindOf(err))
}

func Test_Request_DebounceCollapsesToLatest(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil, WithDebounceWindow(30*time.Millisecond))
	defer agg.Close()

	for _, amount := range []string{"1", "2", "3.5"} {
		agg.Request(QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: amount})
	}

	select {
	case res := <-agg.Updates():
		require.NoError(t, res.Err)
		require.NotNil(t, res.Quote)
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced result delivered")
	}
	require.Equal(t, 1, svc.callCount())
	require.Equal(t, uint64(3500000), svc.lastParams.Amount)
}

func Test_Request_InvalidAmountClearsQuote(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil, WithDebounceWindow(10*time.Millisecond))
	defer agg.Close()

	agg.Request(QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: "nope"})

	select {
	case res := <-agg.Updates():
		require.Nil(t, res.Quote)
		require.NoError(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("no cleared result delivered")
	}
	require.Equal(t, 0, svc.callCount())
}

func Test_Request_InvalidAmountCancelsPending(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil, WithDebounceWindow(20*time.Millisecond))
	defer agg.Close()

	agg.Request(QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: "1"})
	agg.Request(QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: ""})

	select {
	case res := <-agg.Updates():
		require.Nil(t, res.Quote)
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 0, svc.callCount(), "cleared input must cancel the pending fetch")
}

func Test_Close_StopsPendingFetch(t *testing.T) {
	t.Parallel()
	base, quote := pairAssets()
	svc := &fakeQuoteService{}
	agg := NewAggregator(svc, nil, WithDebounceWindow(20*time.Millisecond))

	agg.Request(QuoteRequest{InputAsset: base, OutputAsset: quote, Amount: "1"})
	agg.Close()

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 0, svc.callCount())
}
