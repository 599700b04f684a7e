package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"automarket/internal/domain/entity"
	"automarket/pkg/contextx"
	"automarket/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (b *TelegramBot) Bot() *telego.Bot {
	return b.bot
}

// Run sends events from the channel until it is closed or ctx is done.
func (b *TelegramBot) Run(ctx context.Context, events <-chan entity.RunEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := b.SendEvent(ctx, event); err != nil {
				logger(ctx).Error("failed to send event", logx.Error(err), slog.String(logx.FieldRunID, event.RunID))
			}
		}
	}
}

func (b *TelegramBot) SendEvent(ctx context.Context, event entity.RunEvent) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		Format(event),
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}

// Format renders an event as telegram HTML.
func Format(event entity.RunEvent) string {
	var sb strings.Builder

	switch event.Kind {
	case entity.RunStarted:
		sb.WriteString("▶️ <b>Sell run started</b>\n")
	case entity.RunFinished:
		if event.Summary.Cancelled {
			sb.WriteString("⏹ <b>Sell run cancelled</b>\n")
		} else {
			sb.WriteString("✅ <b>Sell run finished</b>\n")
		}
	case entity.RunFailed:
		sb.WriteString("❌ <b>Sell run failed</b>\n")
	case entity.RunPaused:
		sb.WriteString("⏸ <b>Sell run paused</b>\n")
	case entity.RunResumed:
		sb.WriteString("▶️ <b>Sell run resumed</b>\n")
	}

	fmt.Fprintf(&sb, "🆔 <code>%s</code>\n", html.EscapeString(event.RunID))

	if event.Kind == entity.RunFinished {
		s := event.Summary
		fmt.Fprintf(&sb, "\n📦 <b>Listed:</b> %d\n", s.ItemsListed)
		fmt.Fprintf(&sb, "🏪 <b>Vendored:</b> %d\n", s.ItemsVendored)
		if s.ItemsDeferred > 0 {
			fmt.Fprintf(&sb, "⏳ <b>Deferred:</b> %d\n", s.ItemsDeferred)
		}
		if s.ItemsDropped > 0 {
			fmt.Fprintf(&sb, "🗑 <b>Dropped:</b> %d\n", s.ItemsDropped)
		}
		fmt.Fprintf(&sb, "💰 <b>Estimated revenue:</b> %d", s.EstimatedRevenue)
	}

	if event.Kind == entity.RunFailed && event.Err != nil {
		fmt.Fprintf(&sb, "\n<pre>%s</pre>", html.EscapeString(event.Err.Error()))
	}

	return strings.TrimRight(sb.String(), "\n")
}
