package server_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/catalog"
	"automarket/internal/infrastructure/persistence"
	"automarket/internal/server"
	"automarket/internal/worker"
	"automarket/pkg/errcodes"
	"automarket/pkg/logx"
	"automarket/pkg/rest"
	"automarket/pkg/tests"
)

type fakeRuns struct {
	status worker.Status
	modes  []catalog.Mode
	err    error
}

func (f *fakeRuns) Start(_ context.Context, mode catalog.Mode) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.modes = append(f.modes, mode)
	f.status = worker.Status{Running: true, RunID: "cs1run", Mode: mode.String(), StartedAt: time.Now()}
	return "cs1run", nil
}

func (f *fakeRuns) Stop(context.Context) error {
	if !f.status.Running {
		return domain.NewError(errcodes.NoRunActive, "no sell run is active")
	}
	f.status = worker.Status{}
	return nil
}

func (f *fakeRuns) Pause(context.Context) error {
	if !f.status.Running {
		return domain.NewError(errcodes.NoRunActive, "no sell run is active")
	}
	f.status.Paused = true
	return nil
}

func (f *fakeRuns) Resume(context.Context) error {
	if !f.status.Running {
		return domain.NewError(errcodes.NoRunActive, "no sell run is active")
	}
	f.status.Paused = false
	return nil
}

func (f *fakeRuns) Status() worker.Status {
	return f.status
}

func newTestServer(t *testing.T, runs *fakeRuns, history *persistence.MemoryRunRepository) tests.APIClient {
	t.Helper()

	srv := server.NewServer(server.NewRunServer(runs, history))
	ts := httptest.NewServer(srv.Handler(slog.New(slog.DiscardHandler), logx.NewNopSensitiveDataMasker()))
	t.Cleanup(ts.Close)

	return tests.NewAPIClient(ts.URL, ts.Client())
}

func TestRunServer_Controls(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	runs := &fakeRuns{}
	client := newTestServer(t, runs, persistence.NewMemoryRunRepository())

	var apiErr rest.Error
	resp, err := client.Post(ctx, "/v1/runs/pause", nil, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusConflict, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.NoRunActive), apiErr.Code)

	var started rest.StartRunResponse
	resp, err = client.Post(ctx, "/v1/runs", rest.StartRunRequest{Mode: "list-only"}, &started, nil)
	rq.NoError(err)
	rq.Equal(http.StatusAccepted, resp.StatusCode)
	rq.Equal("cs1run", started.RunID)
	rq.Equal([]catalog.Mode{catalog.ModeListOnly}, runs.modes)

	var status rest.RunStatus
	resp, err = client.Post(ctx, "/v1/runs/pause", nil, &status, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(status.Running)
	rq.True(status.Paused)
	rq.NotNil(status.StartedAt)

	resp, err = client.Post(ctx, "/v1/runs/resume", nil, &status, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(status.Paused)

	resp, err = client.Get(ctx, "/v1/runs/status", &status, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("list-only", status.Mode)

	status = rest.RunStatus{}
	resp, err = client.Post(ctx, "/v1/runs/stop", nil, &status, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(status.Running)
	rq.Nil(status.StartedAt)
}

func TestRunServer_StartErrors(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		request any
		status  int
		code    failure.ErrorCode
	}{
		{
			name:    "unknown mode",
			request: map[string]string{"mode": "sell-everything"},
			status:  http.StatusBadRequest,
			code:    errcodes.ValidationError,
		},
		{
			name:    "already running",
			runErr:  domain.NewError(errcodes.RunInProgress, "busy"),
			request: rest.StartRunRequest{},
			status:  http.StatusConflict,
			code:    errcodes.RunInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			client := newTestServer(t, &fakeRuns{err: tt.runErr}, persistence.NewMemoryRunRepository())

			var apiErr rest.Error
			resp, err := client.Post(context.Background(), "/v1/runs", tt.request, nil, &apiErr)
			rq.NoError(err)
			rq.Equal(tt.status, resp.StatusCode)
			rq.Equal(rest.ErrorCode(tt.code), apiErr.Code)
		})
	}
}

func TestRunServer_History(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	history := persistence.NewMemoryRunRepository()
	client := newTestServer(t, &fakeRuns{}, history)

	var apiErr rest.Error
	resp, err := client.Get(ctx, "/v1/runs/last", nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.RunNotFound), apiErr.Code)

	runID := xid.New().String()
	summary := &entity.RunSummary{RunID: runID, StartedAt: time.Now().UTC()}
	rq.NoError(history.Start(ctx, summary))
	summary.AddListed(10, 9)
	summary.Finish(time.Now().UTC(), false)
	rq.NoError(history.Finish(ctx, summary, []entity.ItemOutcome{
		{Agent: 0, ItemID: 5057, Name: "Iron Ore", Status: entity.OutcomeListed, Quantity: 10, Price: 9},
	}))

	for _, endpoint := range []string{"/v1/runs/last", "/v1/runs/" + runID} {
		var run rest.Run
		resp, err = client.Get(ctx, endpoint, &run, nil)
		rq.NoError(err)
		rq.Equal(http.StatusOK, resp.StatusCode, endpoint)
		rq.Equal(runID, run.Summary.RunID)
		rq.Equal(int64(90), run.Summary.EstimatedRevenue)
		rq.Len(run.Outcomes, 1)
		rq.Equal("listed", run.Outcomes[0].Status)
	}

	resp, err = client.Get(ctx, "/v1/runs/not-an-id", nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.InvalidRunID), apiErr.Code)

	resp, err = client.Get(ctx, "/v1/runs/"+xid.New().String(), nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
}
