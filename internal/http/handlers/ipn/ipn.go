// Package ipn принимает IPN-уведомления NOWPayments и переводит
// оплаченные счета в выдачу подписки.
package ipn

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/aicryptogpt/crypto-radar-bot/internal/http/response"
	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/payments/nowpayments"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
)

// Granter выдаёт подписку по подтверждённой оплате.
type Granter interface {
	GrantEntitlement(ctx context.Context, userID int64, rail string) error
}

type Handler struct {
	log       *slog.Logger
	grants    Granter
	ipnSecret string
}

func New(log *slog.Logger, grants Granter, ipnSecret string) *Handler {
	return &Handler{
		log:       log,
		grants:    grants,
		ipnSecret: ipnSecret,
	}
}

// Payload — интересующая нас часть уведомления NOWPayments.
// order_id несёт Telegram ID пользователя, проставленный при выставлении счёта.
type Payload struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
	OrderID       string `json:"order_id" validate:"required,numeric"`
}

// verifySignature сверяет HMAC-SHA512 тела с подписью из заголовка.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(h.ipnSecret))
	mac.Write(body)
	expectedSig := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ipn"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read ipn body", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}
	defer func() { _ = r.Body.Close() }()

	if h.ipnSecret != "" {
		signature := r.Header.Get("x-nowpayments-sig")
		if signature == "" || !h.verifySignature(body, signature) {
			log.Error("invalid or missing ipn signature")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid signature"))
			return
		}
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal ipn payload", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to parse payload"))
		return
	}

	// Неполные или неоплаченные уведомления подтверждаются без выдачи:
	// NOWPayments иначе будет повторять доставку бесконечно.
	if err := validator.New().Struct(payload); err != nil {
		log.Info("ignored malformed ipn payload", sl.Err(err))
		w.WriteHeader(http.StatusOK)
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			render.JSON(w, r, response.ValidationError(validateErrs))
			return
		}
		render.JSON(w, r, response.OK())
		return
	}

	if !nowpayments.IsPaidStatus(payload.PaymentStatus) {
		log.Info("ignored ipn status", slog.String("payment_status", payload.PaymentStatus))
		w.WriteHeader(http.StatusOK)
		render.JSON(w, r, response.OK())
		return
	}

	userID, err := strconv.ParseInt(payload.OrderID, 10, 64)
	if err != nil {
		log.Error("failed to parse order id", sl.Err(err))
		w.WriteHeader(http.StatusOK)
		render.JSON(w, r, response.OK())
		return
	}

	if err := h.grants.GrantEntitlement(r.Context(), userID, entitlement.RailCrypto); err != nil {
		log.Error("failed to grant entitlement", sl.Err(err), sl.UserID(userID))
	} else {
		log.Info("ipn payment processed", sl.UserID(userID),
			slog.String("payment_status", payload.PaymentStatus))
	}

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OK())
}
