package config

import "time"

type Sell struct {
	UndercutAmount      int64         `env:"UNDERCUT_AMOUNT" envDefault:"1" validate:"gte=0"`
	AutoUndercut        bool          `env:"AUTO_UNDERCUT" envDefault:"true"`
	MinProfitThreshold  int64         `env:"MIN_PROFIT_THRESHOLD" envDefault:"0" validate:"gte=0"`
	ActionDelay         time.Duration `env:"ACTION_DELAY" envDefault:"300ms" validate:"gte=0"`
	InterAgentDelay     time.Duration `env:"INTER_AGENT_DELAY" envDefault:"1s" validate:"gte=0"`
	MaxListingsPerAgent int           `env:"MAX_LISTINGS_PER_AGENT" envDefault:"20" validate:"gte=1"`
	MaxBatchSize        int           `env:"MAX_BATCH_SIZE" envDefault:"99" validate:"gte=1,lte=9999"`
	PrecomputedPrice    bool          `env:"PRECOMPUTED_PRICE_MODE"`
	ListOnly            bool          `env:"LIST_ONLY_MODE"`
	VendorOnly          bool          `env:"VENDOR_ONLY_MODE"`
	IgnoredItemIDs      []uint32      `env:"IGNORED_ITEM_IDS" envSeparator:","`
	SkipHQ              bool          `env:"SKIP_HQ_ITEMS"`

	// EvaluateProfit recomputes the profitability flags from the prices in
	// the catalog instead of trusting the scanner's.
	EvaluateProfit bool          `env:"EVALUATE_PROFIT"`
	PriceMemoTTL   time.Duration `env:"PRICE_MEMO_TTL" envDefault:"1h" validate:"gt=0"`
}
