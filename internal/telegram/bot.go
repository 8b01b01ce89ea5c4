package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/web3-frozen/dividend-monitor/internal/store"
)

const telegramAPI = "https://api.telegram.org/bot"

type Bot struct {
	token  string
	store  *store.Store
	logger *slog.Logger
	client *http.Client
	api    string
	offset int64
}

func NewBot(token string, s *store.Store, logger *slog.Logger) *Bot {
	return &Bot{
		token:  token,
		store:  s,
		logger: logger,
		client: &http.Client{Timeout: 35 * time.Second},
		api:    telegramAPI,
	}
}

// SendMessage sends a text message to a Telegram chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	body, _ := json.Marshal(payload)

	resp, err := b.client.Post(
		b.api+b.token+"/sendMessage",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("telegram API error %d: %s", resp.StatusCode, errResp.Description)
	}
	return nil
}

// Run starts the long-polling loop for incoming Telegram messages.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.poll(ctx)
		}
	}
}

func (b *Bot) poll(ctx context.Context) {
	url := fmt.Sprintf("%s%s/getUpdates?offset=%d&timeout=30", b.api, b.token, b.offset)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		b.logger.Error("create poll request", "error", err)
		return
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("poll updates", "error", err)
		time.Sleep(5 * time.Second)
		return
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool `json:"ok"`
		Result []struct {
			UpdateID int64 `json:"update_id"`
			Message  *struct {
				Chat struct {
					ID int64 `json:"id"`
				} `json:"chat"`
				Text string `json:"text"`
			} `json:"message"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		b.logger.Error("decode updates", "error", err)
		return
	}

	for _, u := range result.Result {
		b.offset = u.UpdateID + 1
		if u.Message == nil {
			continue
		}

		chatID := u.Message.Chat.ID
		text := strings.TrimSpace(u.Message.Text)

		switch {
		case text == "/start" || text == "/help":
			b.handleHelp(chatID)
		case text == "/latest":
			b.handleLatest(ctx, chatID)
		default:
			_ = b.SendMessage(chatID, "Unknown command. Send /help for available commands.")
		}
	}
}

func (b *Bot) handleHelp(chatID int64) {
	msg := "🤖 Dividend Monitor Bot\n\n" +
		"Watches upcoming ex-rights dates and alerts on high cash yields.\n\n" +
		"Commands:\n" +
		"/latest — Show the most recent dividend events\n" +
		"/help — Show this message"
	_ = b.SendMessage(chatID, msg)
}

func (b *Bot) handleLatest(ctx context.Context, chatID int64) {
	events, err := b.store.ListRecentEvents(ctx, 10)
	if err != nil {
		b.logger.Error("list recent events", "error", err)
		_ = b.SendMessage(chatID, "Error fetching events, try again later.")
		return
	}
	if len(events) == 0 {
		_ = b.SendMessage(chatID, "No dividend events collected yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Latest dividend events:\n\n")
	for i, e := range events {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s — %dđ/CP, GDKHQ %s",
			i+1, e.Exchange, e.StockCode, e.DividendValue,
			e.ExRightsDate.Format("02/01/2006")))
		if e.Percent > 0 {
			sb.WriteString(fmt.Sprintf(" (%d%%)", e.Percent))
		}
		sb.WriteString("\n")
	}
	_ = b.SendMessage(chatID, sb.String())
}
