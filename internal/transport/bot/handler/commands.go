package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"automarket/internal/domain"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/transport/bot/view"
	"automarket/pkg/contextx"
	"automarket/pkg/errcodes"
	"automarket/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Status(h.runs.Status(), time.Now()))
}

// OnRun starts a sell run. Usage: /run [normal|list-only|vendor-only]
func (h *Handler) OnRun(ctx *th.Context, msg telego.Message) error {
	mode, ok := ParseRunArgs(msg.Text)
	if !ok {
		return h.sendHTML(ctx, msg.Chat.ID, view.RunUsage)
	}

	runID, err := h.runs.Start(ctx, mode)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, replyForError(ctx, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.RunAccepted(runID, mode.String()))
}

func (h *Handler) OnPause(ctx *th.Context, msg telego.Message) error {
	if err := h.runs.Pause(ctx); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, replyForError(ctx, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.RunPaused)
}

func (h *Handler) OnResume(ctx *th.Context, msg telego.Message) error {
	if err := h.runs.Resume(ctx); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, replyForError(ctx, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.RunResumed)
}

// OnToggle pauses a running run or resumes a paused one.
func (h *Handler) OnToggle(ctx *th.Context, msg telego.Message) error {
	paused, err := h.runs.TogglePause(ctx)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, replyForError(ctx, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Toggled(paused))
}

func (h *Handler) OnStop(ctx *th.Context, msg telego.Message) error {
	if err := h.runs.Stop(ctx); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, replyForError(ctx, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.RunStopped)
}

// ParseRunArgs reads the optional mode argument of /run.
func ParseRunArgs(text string) (catalog.Mode, bool) {
	parts := strings.Fields(text)

	switch len(parts) {
	case 0, 1:
		return catalog.ModeNormal, true
	case 2:
		mode, err := catalog.ParseMode(parts[1])
		return mode, err == nil
	default:
		return catalog.ModeNormal, false
	}
}

func replyForError(ctx *th.Context, err error) string {
	switch {
	case domain.HasCode(err, errcodes.NoRunActive):
		return view.NoRunActive
	case domain.HasCode(err, errcodes.RunInProgress):
		return view.RunInProgress
	default:
		logger(ctx).Error("bot command failed", logx.Error(err), slog.String("component", "bot"))
		return view.Failed(err)
	}
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}
