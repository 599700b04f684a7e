package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/rs/xid"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/worker"
	"automarket/pkg/errcodes"
	"automarket/pkg/httpx/reply"
	"automarket/pkg/httpx/req"
	"automarket/pkg/rest"
)

type runController interface {
	Start(ctx context.Context, mode catalog.Mode) (string, error)
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Status() worker.Status
}

type runHistory interface {
	Get(ctx context.Context, id string) (*entity.RunSummary, error)
	Last(ctx context.Context) (*entity.RunSummary, error)
	Outcomes(ctx context.Context, runID string) ([]entity.ItemOutcome, error)
}

type RunServer struct {
	runs    runController
	history runHistory
}

func NewRunServer(runs runController, history runHistory) RunServer {
	return RunServer{
		runs:    runs,
		history: history,
	}
}

func (s RunServer) postV1Runs(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.StartRunRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	mode, err := catalog.ParseMode(request.Mode)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("catalog.ParseMode: %w", err),
			failure.WithCode(errcodes.ValidationError),
		)
	}

	runID, err := s.runs.Start(ctx, mode)
	if err != nil {
		return fmt.Errorf("runs.Start: %w", err)
	}

	reply.Accepted(ctx, w, rest.StartRunResponse{RunID: runID})

	return nil
}

func (s RunServer) postV1RunsPause(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if err := s.runs.Pause(ctx); err != nil {
		return fmt.Errorf("runs.Pause: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTStatus(s.runs.Status()))

	return nil
}

func (s RunServer) postV1RunsResume(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if err := s.runs.Resume(ctx); err != nil {
		return fmt.Errorf("runs.Resume: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTStatus(s.runs.Status()))

	return nil
}

func (s RunServer) postV1RunsStop(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if err := s.runs.Stop(ctx); err != nil {
		return fmt.Errorf("runs.Stop: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTStatus(s.runs.Status()))

	return nil
}

func (s RunServer) getV1RunsStatus(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTStatus(s.runs.Status()))

	return nil
}

func (s RunServer) getV1RunsLast(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	summary, err := s.history.Last(ctx)
	if err != nil {
		return fmt.Errorf("history.Last: %w", err)
	}

	return s.replyRun(ctx, w, summary)
}

func (s RunServer) getV1Run(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := xid.FromString(r.PathValue("id"))
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("xid.FromString: %w", err),
			failure.WithCode(errcodes.InvalidRunID),
		)
	}

	summary, err := s.history.Get(ctx, id.String())
	if err != nil {
		return fmt.Errorf("history.Get: %w", err)
	}

	return s.replyRun(ctx, w, summary)
}

func (s RunServer) replyRun(ctx context.Context, w http.ResponseWriter, summary *entity.RunSummary) error {
	outcomes, err := s.history.Outcomes(ctx, summary.RunID)
	if err != nil {
		return fmt.Errorf("history.Outcomes: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTRun(summary, outcomes))

	return nil
}
