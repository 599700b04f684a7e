package sell

import (
	"context"
	"log/slog"

	"automarket/internal/domain/service/retry"
	"automarket/pkg/logx"
)

type SessionState uint8

const (
	SessionClosed SessionState = iota
	SessionOpening
	SessionMenuAwaiting
	SessionMenuReady
	SessionActionSelected
	SessionActive
	SessionClosing
)

func (s SessionState) String() string {
	switch s {
	case SessionClosed:
		return "closed"
	case SessionOpening:
		return "opening"
	case SessionMenuAwaiting:
		return "menu-awaiting"
	case SessionMenuReady:
		return "menu-ready"
	case SessionActionSelected:
		return "action-selected"
	case SessionActive:
		return "active"
	case SessionClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// closeOrder lists the sub-surfaces closed on the way out, innermost first.
var closeOrder = []Surface{ //nolint:gochecknoglobals
	SurfaceComparePrices,
	SurfaceSellDialog,
	SurfaceContextMenu,
	SurfaceSellList,
	SurfaceAgentMenu,
}

// Session drives one selling agent from the agent list to its active sell
// list and back.
type Session struct {
	deps  Deps
	state SessionState
	agent int
}

func NewSession(deps Deps) *Session {
	return &Session{deps: deps.withDefaults(), agent: -1}
}

func (s *Session) State() SessionState {
	return s.state
}

func (s *Session) Agent() int {
	return s.agent
}

// Open selects agent index and brings up its sell list. It reports false
// when any step does not become ready in time; the session is then closed
// again and the caller moves on to the next agent.
func (s *Session) Open(ctx context.Context, index int) bool {
	if s.state != SessionClosed {
		s.Close(ctx, false)
	}

	s.agent = index
	s.state = SessionOpening
	log := logger(ctx)

	if !s.await(ctx, s.deps.Policies.AgentList, SurfaceAgentList) {
		log.Warn("agent list not ready")
		s.state = SessionClosed
		return false
	}

	opened, err := s.deps.Target.OpenAgent(ctx, index)
	if err != nil {
		log.Error("target.OpenAgent", logx.Error(err))
		s.state = SessionClosed
		return false
	}
	if !opened {
		log.Warn("agent did not open")
		s.state = SessionClosed
		return false
	}

	s.state = SessionMenuAwaiting

	if !s.await(ctx, s.deps.Policies.AgentMenu, SurfaceAgentMenu) {
		return s.abort(ctx, log, "agent menu not ready")
	}

	s.state = SessionMenuReady

	if !invoke(ctx, s.deps, ActionSellFromInventory) {
		return s.abort(ctx, log, "sell action not found")
	}

	s.state = SessionActionSelected

	if !s.await(ctx, s.deps.Policies.SellList, SurfaceSellList) {
		return s.abort(ctx, log, "sell list not ready")
	}

	s.state = SessionActive
	log.Info("agent session opened")

	return true
}

// Close backs out of the agent. The leave confirmation is only awaited when
// something was vendored, because only vendoring makes the application ask.
// Closing a closed session does nothing.
func (s *Session) Close(ctx context.Context, didVendor bool) {
	if s.state == SessionClosed {
		return
	}

	log := logger(ctx)
	s.state = SessionClosing

	for _, surface := range closeOrder {
		ready, err := s.deps.Target.SurfaceReady(ctx, surface)
		if err != nil || !ready {
			continue
		}

		if _, err := s.deps.Target.CloseSurface(ctx, surface); err != nil {
			log.Warn("target.CloseSurface", slog.String(logx.FieldSurface, surface.String()), logx.Error(err))
		}
	}

	if didVendor {
		confirmed := s.deps.Policies.Confirm.PollUntilReady(ctx, s.deps.Target.ConfirmDialogIfPresent)
		if !confirmed {
			log.Warn("leave confirmation did not appear")
		}
	}

	if err := s.deps.Target.CloseAgent(ctx); err != nil {
		log.Warn("target.CloseAgent", logx.Error(err))
	}

	s.state = SessionClosed
	log.Info("agent session closed", slog.Bool("vendored", didVendor))
}

func (s *Session) abort(ctx context.Context, log *slog.Logger, msg string) bool {
	log.Warn(msg, slog.String(logx.FieldState, s.state.String()))
	s.Close(ctx, false)
	return false
}

func (s *Session) await(ctx context.Context, policy retry.Policy, surface Surface) bool {
	return await(ctx, s.deps, policy, surface)
}

// await polls until surface is ready and reports exhaustion to the observer.
func await(ctx context.Context, deps Deps, policy retry.Policy, surface Surface) bool {
	ready := policy.PollUntilReady(ctx, func(ctx context.Context) (bool, error) {
		return deps.Target.SurfaceReady(ctx, surface)
	})

	if !ready && ctx.Err() == nil {
		deps.Observer.PollExhausted(ctx, surface)
		logger(ctx).Debug("poll exhausted", slog.String(logx.FieldSurface, surface.String()), slog.Int(logx.FieldAttempts, policy.Attempts))
	}

	return ready
}

// invoke resolves action in the topmost menu and triggers it.
func invoke(ctx context.Context, deps Deps, action Action) bool {
	index, found, err := deps.Resolver.Resolve(ctx, deps.Target, action)
	if err != nil {
		logger(ctx).Error("resolver.Resolve", slog.String("action", action.String()), logx.Error(err))
		return false
	}
	if !found {
		logger(ctx).Warn("no menu entry matches action", slog.String("action", action.String()), slog.Any("labels", deps.Resolver.Candidates(action)))
		return false
	}

	if err := deps.Target.InvokeAction(ctx, index); err != nil {
		logger(ctx).Error("target.InvokeAction", slog.String("action", action.String()), logx.Error(err))
		return false
	}

	return true
}
