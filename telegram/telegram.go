package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
)

const helpMessage = "Ask me for an outfit:\n" +
	"`/outfit dinner with friends tonight`\n" +
	"or check how I read an event:\n" +
	"`/occasion job interview at a bank`"

const unknownUserMessage = "I don't know you yet. Add your Telegram username to your profile in the app and try again."

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type WardrobeBot struct {
	DB      *gorm.DB
	Stylist *stylist.Stylist
	Weather services.WeatherProvider
	Sender  Sender
}

func (b *WardrobeBot) reply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.ParseMode = "markdown"
	if _, err := b.Sender.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("telegram send failed")
	}
}

func (b *WardrobeBot) findUser(from *tgbotapi.User) (*models.UserAccount, error) {
	if from == nil || from.UserName == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.UserAccount
	err := b.DB.Where("lower(telegram_username) = lower(?)", from.UserName).Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Handle answers one update. Anything but a message is ignored.
func (b *WardrobeBot) Handle(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}
	logger := zerolog.Ctx(ctx).With().Int64("chat", message.Chat.ID).Str("command", message.Command()).Logger()
	ctx = logger.WithContext(ctx)

	args := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case "outfit":
		b.reply(message.Chat.ID, message.MessageID, b.outfit(ctx, message.From, args))
	case "occasion":
		b.reply(message.Chat.ID, message.MessageID, b.occasion(ctx, args))
	default:
		b.reply(message.Chat.ID, message.MessageID, helpMessage)
	}
}

func (b *WardrobeBot) occasion(ctx context.Context, text string) string {
	if text == "" {
		return "Tell me about the event, e.g. `/occasion dinner at a fancy restaurant`"
	}
	occasion := b.Stylist.Classifier().Classify(ctx, text)
	rule := b.Stylist.Rules().Rule(occasion)
	var sb strings.Builder
	fmt.Fprintf(&sb, "That sounds like a *%s*.", EscapeMessage(string(occasion)))
	if rule.Description != "" {
		fmt.Fprintf(&sb, "\n%s", EscapeMessage(rule.Description))
	}
	return sb.String()
}

func (b *WardrobeBot) outfit(ctx context.Context, from *tgbotapi.User, text string) string {
	logger := zerolog.Ctx(ctx)
	if len([]rune(text)) < 3 {
		return "Tell me what you are dressing for, e.g. `/outfit coffee with friends`"
	}
	user, err := b.findUser(from)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return unknownUserMessage
	}
	if err != nil {
		sentry.CaptureException(err)
		return "Something went wrong, please try again later."
	}

	items, err := models.ReadyWardrobe(b.DB, user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return "Could not load your wardrobe, please try again later."
	}
	if len(items) == 0 {
		return "Your wardrobe is empty. Please add some items first."
	}

	var weather stylist.WeatherSnapshot
	if b.Weather != nil {
		if weather, err = b.Weather.Current(ctx, user.City); err != nil {
			logger.Warn().Err(err).Msg("weather unavailable, generating without it")
			weather = stylist.WeatherSnapshot{}
		}
	}

	candidate, err := b.Stylist.GenerateOutfit(ctx, stylist.Request{
		Message:     text,
		Weather:     weather,
		Wardrobe:    models.ToStylistWardrobe(items),
		Preferences: models.LoadPreferences(b.DB, user.ID).ToStylist(),
	})
	if err != nil {
		sentry.CaptureException(err)
		return "Our stylist is unavailable right now, please try again a bit later."
	}
	logger.Info().Uint("user", user.ID).Str("occasion", string(candidate.Occasion)).Msg("outfit sent over telegram")
	return FormatOutfit(*candidate)
}

// FormatOutfit renders a candidate as a markdown chat message.
func FormatOutfit(c stylist.OutfitCandidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", EscapeMessage(string(c.Occasion)))
	for _, ref := range c.OutfitItems {
		fmt.Fprintf(&sb, "• %s %s (%s)\n", EscapeMessage(ref.Color), EscapeMessage(ref.SubType), ref.ItemType)
	}
	if c.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", EscapeMessage(c.Description))
	}
	if c.StylingTips != "" {
		fmt.Fprintf(&sb, "\nTip: %s\n", EscapeMessage(c.StylingTips))
	}
	for _, w := range c.Warnings {
		fmt.Fprintf(&sb, "\n⚠️ %s", EscapeMessage(w))
	}
	return strings.TrimSpace(sb.String())
}

// RunWardrobeBot polls telegram until ctx is done.
func RunWardrobeBot(ctx context.Context, token string, bot *WardrobeBot) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Sender = api
	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			bot.Handle(ctx, update)
		}
	}
}
