package connection

// Status is the connection lifecycle state. Exactly one value holds at any
// instant.
type Status string

const (
	// StatusDisconnected means no transport exists.
	StatusDisconnected Status = "disconnected"
	// StatusConnecting means the first dial of a fresh cycle is in flight.
	StatusConnecting Status = "connecting"
	// StatusConnected means the transport is live.
	StatusConnected Status = "connected"
	// StatusReconnecting means an attempt failed or the link dropped and the
	// retry policy is waiting or redialing.
	StatusReconnecting Status = "reconnecting"
	// StatusFailed means the retry ceiling was hit; only Connect or
	// ForceReconnect restart the cycle.
	StatusFailed Status = "failed"
)

// Snapshot is a side-effect free view of the manager, as returned by Status.
type Snapshot struct {
	Status            Status
	ReconnectAttempts int
	TransportID       string
	IsInitializing    bool
	LastError         error
}

// Connected reports whether the snapshot is in StatusConnected.
func (s Snapshot) Connected() bool { return s.Status == StatusConnected }
