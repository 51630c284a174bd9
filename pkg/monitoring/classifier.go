package monitoring

import (
	"github.com/core-tools/hsu-sockswatch/pkg/netstat"
)

// Classify reports whether any established connection's remote endpoint
// matches one of the target ports. A SOCKS5 proxy multiplexes many
// destinations over one accept point, so the decision has to look at the
// remote side of each tunnel, not at the listening port. Connections whose
// remote endpoint is not yet resolved (port 0) are ignored, not errors.
func Classify(conns []netstat.Connection, targetPorts []int) bool {
	for _, conn := range conns {
		if conn.State != netstat.StateEstablished {
			continue
		}
		if conn.RemotePort == 0 {
			continue
		}
		for _, port := range targetPorts {
			if conn.RemotePort == port {
				return true
			}
		}
	}
	return false
}

// ProxyInUse reports whether any established connection terminates at the
// local SOCKS port. This is diagnostic only, presence of proxy clients is
// not evidence of target activity.
func ProxyInUse(conns []netstat.Connection, socksPort int) bool {
	for _, conn := range conns {
		if conn.State != netstat.StateEstablished {
			continue
		}
		if conn.LocalPort == socksPort {
			return true
		}
	}
	return false
}
