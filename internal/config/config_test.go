package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"automarket/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	rq := require.New(t)

	t.Setenv("DRY_RUN", "true")

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(20, cfg.Sell.MaxListingsPerAgent)
	rq.Equal(99, cfg.Sell.MaxBatchSize)
	rq.Equal(int64(1), cfg.Sell.UndercutAmount)
	rq.Equal(300*time.Millisecond, cfg.Sell.ActionDelay)
	rq.False(cfg.Postgres.Enabled())
	rq.False(cfg.Redis.Enabled())
	rq.False(cfg.Bot.Enabled())
	rq.Equal(2, cfg.Target.Agents)
}

func TestLoad_Target(t *testing.T) {
	rq := require.New(t)

	_, err := config.Load()
	rq.ErrorIs(err, config.ErrNoTarget)

	t.Setenv("TARGET_URL", "http://127.0.0.1:7777")

	cfg, err := config.Load()
	rq.NoError(err)
	rq.Equal(5*time.Second, cfg.Target.Timeout)

	t.Setenv("TARGET_URL", "not a url")

	_, err = config.Load()
	rq.Error(err)
}

func TestLoad_Overrides(t *testing.T) {
	rq := require.New(t)

	t.Setenv("DRY_RUN", "true")
	t.Setenv("UNDERCUT_AMOUNT", "5")
	t.Setenv("IGNORED_ITEM_IDS", "4,5,6")
	t.Setenv("SKIP_HQ_ITEMS", "true")
	t.Setenv("INTER_AGENT_DELAY", "2s")
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("BOT_CHAT_ID", "42")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(int64(5), cfg.Sell.UndercutAmount)
	rq.Equal([]uint32{4, 5, 6}, cfg.Sell.IgnoredItemIDs)
	rq.True(cfg.Sell.SkipHQ)
	rq.Equal(2*time.Second, cfg.Sell.InterAgentDelay)
	rq.True(cfg.Bot.Enabled())
	rq.Equal(int64(42), cfg.Bot.Admin())
	rq.True(cfg.Redis.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "exclusive modes",
			env:  map[string]string{"LIST_ONLY_MODE": "true", "VENDOR_ONLY_MODE": "true"},
		},
		{
			name: "zero listing cap",
			env:  map[string]string{"MAX_LISTINGS_PER_AGENT": "0"},
		},
		{
			name: "negative undercut",
			env:  map[string]string{"UNDERCUT_AMOUNT": "-1"},
		},
		{
			name: "malformed duration",
			env:  map[string]string{"ACTION_DELAY": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DRY_RUN", "true")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

func TestLoadLabels(t *testing.T) {
	rq := require.New(t)

	labels, err := config.LoadLabels("")
	rq.NoError(err)
	rq.Empty(labels.Vendor)

	path := filepath.Join(t.TempDir(), "labels.yaml")
	rq.NoError(os.WriteFile(path, []byte(`
sell_from_inventory:
  - "Verkaufen"
vendor:
  - "An Händler verkaufen"
  - "Händler"
`), 0o600))

	labels, err = config.LoadLabels(path)
	rq.NoError(err)
	rq.Equal([]string{"Verkaufen"}, labels.SellFromInventory)
	rq.Equal([]string{"An Händler verkaufen", "Händler"}, labels.Vendor)
	rq.Empty(labels.PutUpForSale)

	_, err = config.ParseLabels([]byte("vendor: [unterminated"))
	rq.Error(err)
}
