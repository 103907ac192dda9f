package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/domain/entry"
	"spendlog/internal/infrastructure/memory"
	"spendlog/internal/shared/messages"
)

func newReplier(t *testing.T) (*Replier, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	now := func() time.Time { return time.Date(2024, time.May, 4, 9, 0, 0, 0, time.UTC) }
	return NewReplier(entry.NewService(store, nil, now), nil), store
}

func TestReplier_RecordsQuickExpense(t *testing.T) {
	r, store := newReplier(t)

	reply := r.Reply(context.Background(), " coffee , 120, cash ")

	assert.Contains(t, reply, "Item: Coffee")
	assert.Contains(t, reply, "Amount: 120.00")
	assert.Contains(t, reply, "Payment Type: Cash")
	assert.Contains(t, reply, "Category: General")

	stored, err := store.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "2024-05-04", stored[0].PurchaseDate.Format(entry.DateLayout))
	assert.Nil(t, stored[0].CardType)
	assert.Nil(t, stored[0].BankName)
	assert.Nil(t, stored[0].UPIProvider)
}

func TestReplier_WithCategory(t *testing.T) {
	r, _ := newReplier(t)

	reply := r.Reply(context.Background(), "Cab, 250, UPI, transport")

	assert.Contains(t, reply, "Category: Transport")
	assert.Contains(t, reply, "Payment Type: UPI")
}

func TestReplier_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "wrong field count", text: "Coffee 120 Cash", want: "Item, Amount, Payment_Type"},
		{name: "bad amount", text: "Coffee, abc, Cash", want: `"abc"`},
		{name: "missing payment", text: "Coffee, 120, ", want: entry.LabelPaymentMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newReplier(t)

			reply := r.Reply(context.Background(), tt.text)

			assert.True(t, strings.HasPrefix(reply, "⚠️"), "reply %q", reply)
			assert.Contains(t, reply, tt.want)
			stored, _ := store.ListExpenses(context.Background())
			assert.Empty(t, stored)
		})
	}
}

func TestReplier_StoreFailure(t *testing.T) {
	r, store := newReplier(t)
	store.Close()

	reply := r.Reply(context.Background(), "Coffee, 120, Cash")

	assert.Equal(t, messages.Defaults().Failed, reply)
}

func TestReplier_CustomMessages(t *testing.T) {
	store := memory.NewStore()
	msgs := messages.Defaults()
	msgs.Added = "ok {item}={amount}"
	r := NewReplier(entry.NewService(store, nil, nil), msgs)

	assert.Equal(t, "ok Tea=15.00", r.Reply(context.Background(), "tea, 15, cash"))
}

type fakeAPI struct {
	updates chan tgbotapi.Update
	sent    chan tgbotapi.MessageConfig
	sendErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		updates: make(chan tgbotapi.Update, 4),
		sent:    make(chan tgbotapi.MessageConfig, 4),
	}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent <- mc
	}
	return tgbotapi.Message{}, f.sendErr
}

func runBot(t *testing.T, api *fakeAPI, r *Replier) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bot := NewBot(api, r, Config{Workers: 2, JobTimeout: time.Second})

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("bot did not stop")
		}
	}
}

func awaitReply(t *testing.T, api *fakeAPI) tgbotapi.MessageConfig {
	t.Helper()
	select {
	case mc := <-api.sent:
		return mc
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	return tgbotapi.MessageConfig{}
}

func TestBot_StartCommand(t *testing.T) {
	api := newFakeAPI()
	r, _ := newReplier(t)
	stop := runBot(t, api, r)
	defer stop()

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "/start",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}

	reply := awaitReply(t, api)
	assert.Equal(t, int64(42), reply.ChatID)
	assert.Equal(t, 7, reply.ReplyToMessageID)
	assert.Equal(t, messages.Defaults().Start, reply.Text)
}

func TestBot_RecordsMessage(t *testing.T) {
	api := newFakeAPI()
	r, store := newReplier(t)
	stop := runBot(t, api, r)

	api.updates <- tgbotapi.Update{}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 8,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "Lunch, 180, Card",
	}}

	reply := awaitReply(t, api)
	stop()

	assert.Contains(t, reply.Text, "Item: Lunch")
	stored, err := store.ListExpenses(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestBot_SendErrorDoesNotStopLoop(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("telegram down")
	r, _ := newReplier(t)
	stop := runBot(t, api, r)
	defer stop()

	for i := 1; i <= 2; i++ {
		api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{MessageID: i, Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}}
		awaitReply(t, api)
	}
}
