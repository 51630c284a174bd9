package netstat

// Connection is one entry of the host connection table, produced fresh on
// every snapshot and never persisted.
type Connection struct {
	Protocol   string
	LocalAddr  string
	LocalPort  int
	RemoteAddr string
	RemotePort int
	State      string
	PID        int
}

// Connection states as reported by the host connection table
const (
	StateEstablished = "ESTABLISHED"
	StateListen      = "LISTEN"
	StateUnknown     = "UNKNOWN"
)

// Provider supplies one snapshot of the host connection table per call.
// It is an interface so that the source of remote-endpoint data stays
// pluggable: an opaque SOCKS relay may require proxy-side logging or
// conntrack data instead of the kernel socket table.
type Provider interface {
	Snapshot() ([]Connection, error)
}

// Options configures a system connection table provider
type Options struct {
	// ContainerName scopes the snapshot to the network namespace of the
	// named container. Empty means the host namespace. Linux only.
	ContainerName string
}

// Established filters a snapshot down to established connections
func Established(conns []Connection) []Connection {
	var out []Connection
	for _, conn := range conns {
		if conn.State == StateEstablished {
			out = append(out, conn)
		}
	}
	return out
}
