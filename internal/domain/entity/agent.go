package entity

// Agent is an independent selling slot. CurrentCount is only a snapshot, the
// listing count can change outside the engine and must be queried again
// before every decision.
type Agent struct {
	Index        int
	CapacityCap  int
	CurrentCount int
}

func (a Agent) AvailableSlots() int {
	return max(0, a.CapacityCap-a.CurrentCount)
}
