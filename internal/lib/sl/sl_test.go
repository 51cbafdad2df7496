package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestUserID_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.UserID(6172153716)

	assert.Equal(t, "user_id", attr.Key)
	assert.Equal(t, slog.Int64Value(6172153716), attr.Value)
}
