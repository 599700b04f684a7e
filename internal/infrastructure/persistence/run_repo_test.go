package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/internal/infrastructure/persistence"
	"automarket/pkg/dbtest"
	"automarket/pkg/errcodes"
)

type runRepository interface {
	Start(ctx context.Context, summary *entity.RunSummary) error
	Finish(ctx context.Context, summary *entity.RunSummary, outcomes []entity.ItemOutcome) error
	Get(ctx context.Context, id string) (*entity.RunSummary, error)
	Last(ctx context.Context) (*entity.RunSummary, error)
	Outcomes(ctx context.Context, runID string) ([]entity.ItemOutcome, error)
}

func testRunRepository(t *testing.T, repo runRepository) {
	t.Helper()

	rq := require.New(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	first := &entity.RunSummary{RunID: xid.New().String(), StartedAt: started.Add(-time.Hour)}
	second := &entity.RunSummary{RunID: xid.New().String(), StartedAt: started}

	rq.NoError(repo.Start(ctx, first))
	rq.NoError(repo.Start(ctx, second))

	last, err := repo.Last(ctx)
	rq.NoError(err)
	rq.Equal(second.RunID, last.RunID)
	rq.Nil(last.FinishedAt)

	second.AddListed(250, 99)
	second.AddVendored(3, 10)
	second.Finish(started.Add(time.Minute), false)

	outcomes := []entity.ItemOutcome{
		{Agent: 0, ItemID: 1, Name: "A", Status: entity.OutcomeListed, Quantity: 250, Price: 99},
		{Agent: 0, ItemID: 2, Name: "B", Status: entity.OutcomeVendored, Quantity: 3, Price: 10},
	}
	rq.NoError(repo.Finish(ctx, second, outcomes))

	got, err := repo.Get(ctx, second.RunID)
	rq.NoError(err)
	rq.Equal(2, got.TotalItems)
	rq.Equal(int64(250*99+30), got.EstimatedRevenue)
	rq.NotNil(got.FinishedAt)
	rq.True(got.FinishedAt.Equal(*second.FinishedAt))

	stored, err := repo.Outcomes(ctx, second.RunID)
	rq.NoError(err)
	rq.Len(stored, 2)
	rq.Equal(second.RunID, stored[0].RunID)
	rq.Equal(entity.OutcomeVendored, stored[1].Status)

	_, err = repo.Get(ctx, "missing")
	rq.True(domain.HasCode(err, errcodes.RunNotFound))

	err = repo.Finish(ctx, &entity.RunSummary{RunID: "missing"}, nil)
	rq.True(domain.HasCode(err, errcodes.RunNotFound))
}

func TestMemoryRunRepository(t *testing.T) {
	repo := persistence.NewMemoryRunRepository()

	_, err := repo.Last(context.Background())
	require.True(t, domain.HasCode(err, errcodes.RunNotFound))

	testRunRepository(t, repo)
}

func TestRunRepository(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/001_sell_runs.sql"))

	testRunRepository(t, persistence.NewRunRepository(db))
}
