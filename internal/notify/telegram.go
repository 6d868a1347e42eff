// Package notify tells matched users about new matches through Telegram.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/pkg/logger"
)

const keyMatchCreated = "match.created"

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Translator interface {
	GetString(lang, key string) string
}

// TelegramNotifier messages both users of a new match, if they linked a
// Telegram chat.
type TelegramNotifier struct {
	Sender     Sender
	Directory  storage.Directory
	Translator Translator
	Lang       string
}

// NewTelegramNotifier authorizes the bot behind token.
func NewTelegramNotifier(token string, dir storage.Directory, tr Translator, lang string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authorize bot: %w", err)
	}
	bot.Debug = false
	logger.Info("telegram bot authorized", zap.String("account", bot.Self.UserName))

	return &TelegramNotifier{Sender: bot, Directory: dir, Translator: tr, Lang: lang}, nil
}

// MatchCreated sends the notification. Failures are logged only.
func (n *TelegramNotifier) MatchCreated(ctx context.Context, m *models.Match) {
	for _, userID := range []string{m.UserAID, m.UserBID} {
		if err := n.notify(ctx, userID, m.OtherUser(userID)); err != nil {
			logger.Warn("telegram: match notification failed",
				zap.String("match_id", m.ID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
}

func (n *TelegramNotifier) notify(ctx context.Context, userID, partnerID string) error {
	user, err := n.Directory.ResolveUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TelegramID == nil {
		return nil
	}
	partner, err := n.Directory.ResolveUser(ctx, partnerID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(n.Translator.GetString(n.Lang, keyMatchCreated), partner.DisplayName)
	_, err = n.Sender.Send(tgbotapi.NewMessage(*user.TelegramID, text))
	return err
}
