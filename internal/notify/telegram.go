package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramNotifier sends study digests through a Telegram bot
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier authorizes the bot against the Telegram API
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}

	logrus.Infof("telegram digests authorized on account %s", api.Self.UserName)
	return &TelegramNotifier{api: api}, nil
}

// SendDigest tells one chat how many questions are waiting for review
func (n *TelegramNotifier) SendDigest(chatID int64, due int) error {
	noun := "questions"
	if due == 1 {
		noun = "question"
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("You have %d %s due for review. Open the app for a quick drill.", due, noun))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send digest to chat %d: %w", chatID, err)
	}
	return nil
}
