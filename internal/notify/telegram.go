package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vwap-grader/grader/models"
)

// Notifier sends grade-transition alerts to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New creates a Telegram notifier.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing Telegram bot: %w", err)
	}

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notifier").Logger(),
	}, nil
}

// ShouldAlert reports whether a grade transition warrants a message.
// Only moves into or out of the extreme grades (OPTIMAL and FORBIDDEN)
// are alerted; RISKY/FAVORABLE churn between bars stays silent.
func ShouldAlert(from, to models.EntryQuality) bool {
	if from == to {
		return false
	}
	return from == models.QualityOptimal || to == models.QualityOptimal ||
		from == models.QualityForbidden || to == models.QualityForbidden
}

// GradeChange sends one transition alert for a direction.
func (n *Notifier) GradeChange(symbol, direction string, from, to models.EntryQuality, price float64, barTime time.Time) error {
	icon := "⚠️"
	if to == models.QualityOptimal {
		icon = "✅"
	} else if to == models.QualityForbidden {
		icon = "🚫"
	}

	message := fmt.Sprintf(
		"%s *%s %s entry*\n\n"+
			"Grade: %s → *%s*\n"+
			"Price: %.5f\n"+
			"Bar: %s",
		icon, symbol, direction,
		from, to,
		price,
		barTime.Format(time.RFC3339),
	)

	msg := tgbotapi.NewMessage(n.chatID, message)
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}

	n.logger.Debug().
		Str("symbol", symbol).
		Str("direction", direction).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Grade change alert sent")

	return nil
}
