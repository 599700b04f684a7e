// Package view holds the texts the control bot replies with.
package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"automarket/internal/worker"
)

const (
	StartMessage = "🤖 <b>automarket</b>\n\n" +
		"/run <code>[normal|list-only|vendor-only]</code> start a sell run\n" +
		"/pause pause the active run\n" +
		"/resume resume a paused run\n" +
		"/toggle pause or resume the active run\n" +
		"/stop cancel the active run\n" +
		"/status show what is running"

	RunUsage      = "❌ Usage: /run <code>[normal|list-only|vendor-only]</code>"
	NoRunActive   = "ℹ️ No sell run is active."
	RunStopped    = "⏹ Sell run stopped."
	RunPaused     = "⏸ Sell run paused."
	RunResumed    = "▶️ Sell run resumed."
	RunInProgress = "⚠️ A sell run is already in progress."
)

func RunAccepted(runID, mode string) string {
	return fmt.Sprintf("✅ Sell run <code>%s</code> accepted (%s).", html.EscapeString(runID), html.EscapeString(mode))
}

func Toggled(paused bool) string {
	if paused {
		return RunPaused
	}

	return RunResumed
}

func Failed(err error) string {
	return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
}

func Status(status worker.Status, now time.Time) string {
	if !status.Running {
		return "📊 <b>Status</b>\n\n🔴 idle"
	}

	var sb strings.Builder

	sb.WriteString("📊 <b>Status</b>\n\n")
	if status.Paused {
		sb.WriteString("⏸ paused\n")
	} else {
		sb.WriteString("🟢 running\n")
	}
	fmt.Fprintf(&sb, "🆔 <code>%s</code>\n", html.EscapeString(status.RunID))
	fmt.Fprintf(&sb, "⚙️ <b>Mode:</b> %s\n", status.Mode)
	fmt.Fprintf(&sb, "⏱ <b>Elapsed:</b> %s", now.Sub(status.StartedAt).Truncate(time.Second))

	return sb.String()
}
