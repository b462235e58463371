package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*models.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTelegramNotifier_Notify(t *testing.T) {
	ctx := context.Background()
	chatID := int64(4242)

	t.Run("sends to the recipient chat with kind prefix", func(t *testing.T) {
		sender := new(mockSender)
		n := NewTelegramNotifier(sender, zap.NewNop())

		sender.On("SendMessage", ctx, mock.MatchedBy(func(p *bot.SendMessageParams) bool {
			return p.ChatID == chatID && p.Text == "✅ hold approved"
		})).Return(&models.Message{ID: 1}, nil)

		err := n.Notify(ctx, &model.User{ID: 1, TelegramID: &chatID}, KindHoldApproved, "hold approved")

		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("skips users without telegram", func(t *testing.T) {
		sender := new(mockSender)
		n := NewTelegramNotifier(sender, zap.NewNop())

		err := n.Notify(ctx, &model.User{ID: 2}, KindCourseEnding, "ending")

		require.NoError(t, err)
		sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})

	t.Run("wraps send errors", func(t *testing.T) {
		sender := new(mockSender)
		n := NewTelegramNotifier(sender, zap.NewNop())

		sender.On("SendMessage", ctx, mock.Anything).Return(nil, errors.New("telegram down"))

		err := n.Notify(ctx, &model.User{ID: 3, TelegramID: &chatID}, KindHoldRejected, "rejected")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram down")
	})
}
