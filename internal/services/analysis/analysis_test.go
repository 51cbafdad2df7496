package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aicryptogpt/crypto-radar-bot/internal/marketdata"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	"github.com/aicryptogpt/crypto-radar-bot/internal/session"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

type GateMock struct{ mock.Mock }

func (m *GateMock) Authorize(ctx context.Context, userID int64) (entitlement.Decision, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}
func (m *GateMock) ConsumeTrial(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type MarketMock struct{ mock.Mock }

func (m *MarketMock) QuoteLatest(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

type InsightMock struct{ mock.Mock }

func (m *InsightMock) Ask(ctx context.Context, prompt, lang string) (string, error) {
	args := m.Called(ctx, prompt, lang)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(gate *GateMock, market *MarketMock, insight *InsightMock) (*Service, session.Store) {
	sessions := session.NewMemoryStore(0)
	return New(gate, market, insight, sessions, newNoopLogger()), sessions
}

func TestLookup_OpensSession(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, Paid: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)

	svc, sessions := newService(gate, market, new(InsightMock))

	sess, err := svc.Lookup(context.Background(), 42, "  btc ", "en")
	require.NoError(t, err)
	assert.Equal(t, "BTC", sess.Symbol)
	assert.Equal(t, 64000.0, sess.Price)

	stored, ok, err := sessions.Get(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BTC", stored.Symbol)
}

func TestLookup_DeniedWithoutEntitlement(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{}, nil)

	market := new(MarketMock)

	svc, _ := newService(gate, market, new(InsightMock))

	_, err := svc.Lookup(context.Background(), 42, "BTC", "en")
	require.ErrorIs(t, err, ErrNotEntitled)
	market.AssertNotCalled(t, "QuoteLatest", mock.Anything, mock.Anything)
}

func TestLookup_UnknownSymbol(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, Paid: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "NOPE").Return(0.0, marketdata.ErrSymbolNotFound)

	svc, sessions := newService(gate, market, new(InsightMock))

	_, err := svc.Lookup(context.Background(), 42, "NOPE", "en")
	require.ErrorIs(t, err, marketdata.ErrSymbolNotFound)

	// неудачный поиск не открывает сессию
	_, ok, err := sessions.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun_NoSessionIsNoOp(t *testing.T) {
	gate := new(GateMock)
	insight := new(InsightMock)

	svc, _ := newService(gate, new(MarketMock), insight)

	_, err := svc.Run(context.Background(), 42, "daily")
	require.ErrorIs(t, err, ErrNoSession)
	gate.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	insight.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LastLookupWins(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, Paid: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)
	market.On("QuoteLatest", mock.Anything, "ETH").Return(3200.0, nil)

	insight := new(InsightMock)
	insight.On("Ask", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "ETH") && !strings.Contains(prompt, "BTC")
	}), "en").Return("analysis text", nil)

	svc, _ := newService(gate, market, insight)

	_, err := svc.Lookup(context.Background(), 42, "BTC", "en")
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), 42, "ETH", "en")
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), 42, "daily")
	require.NoError(t, err)
	assert.Equal(t, "analysis text", result.Text)
}

func TestRun_TrialTierMarksResultButDefersConsumption(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, TrialAvailable: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)

	insight := new(InsightMock)
	insight.On("Ask", mock.Anything, mock.Anything, "ar").Return("تحليل", nil)

	svc, _ := newService(gate, market, insight)

	_, err := svc.Lookup(context.Background(), 42, "BTC", "ar")
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), 42, "weekly")
	require.NoError(t, err)
	assert.True(t, result.Trial)
	// проба фиксируется только после доставки, сам Run её не трогает
	gate.AssertNotCalled(t, "ConsumeTrial", mock.Anything, mock.Anything)

	gate.On("ConsumeTrial", mock.Anything, int64(42)).Return(nil)
	require.NoError(t, svc.ConfirmTrialDelivery(context.Background(), 42))
	gate.AssertCalled(t, "ConsumeTrial", mock.Anything, int64(42))
}

func TestRun_PaidTierKeepsTrial(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, Paid: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)

	insight := new(InsightMock)
	insight.On("Ask", mock.Anything, mock.Anything, "en").Return("analysis text", nil)

	svc, _ := newService(gate, market, insight)

	_, err := svc.Lookup(context.Background(), 42, "BTC", "en")
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), 42, "4h")
	require.NoError(t, err)
	assert.False(t, result.Trial)
	gate.AssertNotCalled(t, "ConsumeTrial", mock.Anything, mock.Anything)
}

func TestRun_InsightFailureYieldsFallbackAndKeepsTrial(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).Return(entitlement.Decision{Allowed: true, TrialAvailable: true}, nil)

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)

	insight := new(InsightMock)
	insight.On("Ask", mock.Anything, mock.Anything, "en").Return("", errors.New("timeout"))

	svc, _ := newService(gate, market, insight)

	_, err := svc.Lookup(context.Background(), 42, "BTC", "en")
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), 42, "daily")
	require.NoError(t, err)
	assert.Equal(t, texts.Fallback, result.Text)
	assert.False(t, result.Trial)
	gate.AssertNotCalled(t, "ConsumeTrial", mock.Anything, mock.Anything)
}

func TestRun_EntitlementRecheckedAfterLookup(t *testing.T) {
	gate := new(GateMock)
	gate.On("Authorize", mock.Anything, int64(42)).
		Return(entitlement.Decision{Allowed: true, TrialAvailable: true}, nil).Once()
	gate.On("Authorize", mock.Anything, int64(42)).
		Return(entitlement.Decision{}, nil).Once()

	market := new(MarketMock)
	market.On("QuoteLatest", mock.Anything, "BTC").Return(64000.0, nil)

	insight := new(InsightMock)

	svc, _ := newService(gate, market, insight)

	_, err := svc.Lookup(context.Background(), 42, "BTC", "en")
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), 42, "daily")
	require.ErrorIs(t, err, ErrNotEntitled)
	insight.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything, mock.Anything)
}
