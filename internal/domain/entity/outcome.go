package entity

type OutcomeStatus string

const (
	OutcomeListed   OutcomeStatus = "listed"
	OutcomeVendored OutcomeStatus = "vendored"
	OutcomeDropped  OutcomeStatus = "dropped"
	OutcomeDeferred OutcomeStatus = "deferred"
)

// ItemOutcome records what happened to one item on one agent.
type ItemOutcome struct {
	RunID    string        `json:"-" db:"run_id"`
	Agent    int           `json:"agent" db:"agent"`
	ItemID   uint32        `json:"item_id" db:"item_id"`
	IsHQ     bool          `json:"is_hq" db:"is_hq"`
	Name     string        `json:"name" db:"name"`
	Status   OutcomeStatus `json:"status" db:"status"`
	Quantity int           `json:"quantity" db:"quantity"`
	Price    int64         `json:"price" db:"price"`
	Reason   string        `json:"reason,omitempty" db:"reason"`
}
