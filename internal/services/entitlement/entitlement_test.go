package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) MarkPaid(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) MarkTrialConsumed(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *RepoMock) IsPaid(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) HasRemainingTrial(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) GetUserLanguage(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) SendText(userID int64, text string) error {
	return m.Called(userID, text).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		paid      bool
		trial     bool
		wantAllow bool
	}{
		{"оплаченный пользователь допущен", true, false, true},
		{"оплаченный допущен даже после израсходованной пробы", true, false, true},
		{"неоплаченный с пробой допущен", false, true, true},
		{"неоплаченный без пробы не допущен", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("IsPaid", mock.Anything, int64(42)).Return(tt.paid, nil)
			if !tt.paid {
				repo.On("HasRemainingTrial", mock.Anything, int64(42)).Return(tt.trial, nil)
			}

			svc := New(repo, new(NotifierMock), newNoopLogger())
			decision, err := svc.Authorize(context.Background(), 42)

			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, decision.Allowed)
			assert.Equal(t, tt.paid, decision.Paid)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthorize_StorageErrorIsNotDenial(t *testing.T) {
	repo := new(RepoMock)
	repo.On("IsPaid", mock.Anything, int64(42)).Return(false, errors.New("connection refused"))

	svc := New(repo, new(NotifierMock), newNoopLogger())
	_, err := svc.Authorize(context.Background(), 42)

	require.Error(t, err)
}

func TestGrantEntitlement_MarksPaidAndNotifies(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(true, nil)
	repo.On("GetUserLanguage", mock.Anything, int64(42)).Return("en", nil)

	notifier := new(NotifierMock)
	notifier.On("SendText", int64(42), mock.MatchedBy(func(text string) bool {
		return text != ""
	})).Return(nil)

	svc := New(repo, notifier, newNoopLogger())
	err := svc.GrantEntitlement(context.Background(), 42, RailCrypto)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "SendText", 1)
}

func TestGrantEntitlement_NotifyFailureDoesNotRollBack(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(true, nil)
	repo.On("GetUserLanguage", mock.Anything, int64(42)).Return("ar", nil)

	notifier := new(NotifierMock)
	notifier.On("SendText", int64(42), mock.Anything).Return(errors.New("blocked by user"))

	svc := New(repo, notifier, newNoopLogger())
	err := svc.GrantEntitlement(context.Background(), 42, RailStars)

	require.NoError(t, err)
}

func TestGrantEntitlement_LanguageLookupFailureUsesDefault(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(true, nil)
	repo.On("GetUserLanguage", mock.Anything, int64(42)).Return("", errors.New("no rows"))

	notifier := new(NotifierMock)
	notifier.On("SendText", int64(42), mock.Anything).Return(nil)

	svc := New(repo, notifier, newNoopLogger())
	err := svc.GrantEntitlement(context.Background(), 42, RailCrypto)

	require.NoError(t, err)
	notifier.AssertNumberOfCalls(t, "SendText", 1)
}

func TestGrantEntitlement_StorageErrorFailsGrant(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(false, errors.New("connection refused"))

	notifier := new(NotifierMock)

	svc := New(repo, notifier, newNoopLogger())
	err := svc.GrantEntitlement(context.Background(), 42, RailCrypto)

	require.Error(t, err)
	notifier.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything)
}

func TestGrantEntitlement_DuplicateNotificationNotifiesOnce(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(true, nil).Once()
	repo.On("MarkPaid", mock.Anything, int64(42)).Return(false, nil)
	repo.On("GetUserLanguage", mock.Anything, int64(42)).Return("en", nil)

	notifier := new(NotifierMock)
	notifier.On("SendText", int64(42), mock.Anything).Return(nil)

	svc := New(repo, notifier, newNoopLogger())

	require.NoError(t, svc.GrantEntitlement(context.Background(), 42, RailCrypto))
	require.NoError(t, svc.GrantEntitlement(context.Background(), 42, RailCrypto))
	require.NoError(t, svc.GrantEntitlement(context.Background(), 42, RailStars))

	notifier.AssertNumberOfCalls(t, "SendText", 1)
	repo.AssertNumberOfCalls(t, "GetUserLanguage", 1)
}

func TestConsumeTrial(t *testing.T) {
	repo := new(RepoMock)
	repo.On("MarkTrialConsumed", mock.Anything, int64(42)).Return(nil)

	svc := New(repo, new(NotifierMock), newNoopLogger())
	require.NoError(t, svc.ConsumeTrial(context.Background(), 42))
	repo.AssertExpectations(t)
}
