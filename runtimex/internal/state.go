package internal

// State is a lifecycle phase of the Runtime.
type State int32

const (
	StateIdle State = iota
	StateConnectingStore
	StateConnectingBroker
	StateServing
	StateShuttingDown
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateConnectingStore:  "connecting_store",
	StateConnectingBroker: "connecting_broker",
	StateServing:          "serving",
	StateShuttingDown:     "shutting_down",
	StateStopped:          "stopped",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
