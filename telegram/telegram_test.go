package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/dbhelper"
	"wardrobeapi/stylist"
	"wardrobeapi/test"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func command(username, text string) tgbotapi.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: 77},
		From:      &tgbotapi.User{UserName: username},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func setupBot(t *testing.T, completer *test.FakeCompleter) (*WardrobeBot, *recordingSender) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	cleaner()
	t.Cleanup(cleaner)

	sender := &recordingSender{}
	return &WardrobeBot{
		DB:      db,
		Stylist: stylist.New(completer, stylist.DefaultRuleTable(), stylist.DefaultConfig()),
		Weather: &test.WeatherMock{Snapshot: stylist.WeatherSnapshot{Temperature: 20, Description: "Clear"}},
		Sender:  sender,
	}, sender
}

func TestOutfitCommand(t *testing.T) {
	completer := &test.FakeCompleter{Routes: test.ClassifierRoute(stylist.CasualOuting)}
	bot, sender := setupBot(t, completer)
	user := test.FakeUser(bot.DB, nil)
	bot.DB.Model(user).Update("telegram_username", "Alex_Styles")
	items := test.FakeWardrobe(bot.DB, user.ID)
	completer.Push(test.OutfitReply("casual outing", items[0], items[1], items[2]))

	bot.Handle(context.Background(), command("alex_styles", "/outfit brunch with friends"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, int64(77), msg.ChatID)
	assert.Equal(t, 10, msg.ReplyToMessageID)
	assert.Contains(t, msg.Text, "*casual outing*")
	assert.Contains(t, msg.Text, "• white t-shirt (top)")
	assert.Contains(t, msg.Text, "Tip: Roll the sleeves once.")
}

func TestOutfitCommandUnknownUser(t *testing.T) {
	bot, sender := setupBot(t, &test.FakeCompleter{})

	bot.Handle(context.Background(), command("stranger", "/outfit brunch with friends"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, unknownUserMessage, sender.sent[0].Text)
}

func TestOccasionCommand(t *testing.T) {
	bot, sender := setupBot(t, &test.FakeCompleter{Routes: test.ClassifierRoute(stylist.JobInterview)})

	bot.Handle(context.Background(), command("anyone", "/occasion meeting at a law firm for a new role"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "*job interview*")
}

func TestUnknownCommandShowsHelp(t *testing.T) {
	bot, sender := setupBot(t, &test.FakeCompleter{})

	bot.Handle(context.Background(), command("anyone", "/start"))
	bot.Handle(context.Background(), tgbotapi.Update{})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, helpMessage, sender.sent[0].Text)
}

func TestFormatOutfitEscapesMarkdown(t *testing.T) {
	text := FormatOutfit(stylist.OutfitCandidate{
		Occasion:    stylist.Party,
		OutfitItems: []stylist.OutfitItemRef{{ID: "1", Color: "black", SubType: "t_shirt", ItemType: stylist.Top}},
		Warnings:    []string{"Added shoes \"3\" to complete the outfit"},
	})
	assert.Contains(t, text, "t\\_shirt")
	assert.Contains(t, text, "⚠️ Added shoes")
}
