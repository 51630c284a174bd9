package netstat

import (
	"bufio"
	"encoding/hex"
	"io"
	"net"
	"strconv"
	"strings"
)

// Kernel socket states from include/net/tcp_states.h
var procStateMap = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

// parseProcNet parses the body of a /proc/net/tcp or /proc/net/tcp6 table.
// Lines that do not parse are skipped, a partially readable table is still
// a usable snapshot.
func parseProcNet(r io.Reader, proto string, ipv6 bool) []Connection {
	var conns []Connection

	scanner := bufio.NewScanner(r)
	scanner.Scan() // skip header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		localAddr, localPort := parseProcAddr(fields[1], ipv6)
		remoteAddr, remotePort := parseProcAddr(fields[2], ipv6)

		state, ok := procStateMap[fields[3]]
		if !ok {
			state = StateUnknown
		}

		conns = append(conns, Connection{
			Protocol:   proto,
			LocalAddr:  localAddr,
			LocalPort:  localPort,
			RemoteAddr: remoteAddr,
			RemotePort: remotePort,
			State:      state,
		})
	}

	return conns
}

// parseProcAddr decodes the hex "ADDRESS:PORT" form used by /proc/net tables
func parseProcAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	port, _ := strconv.ParseInt(parts[1], 16, 32)

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		// /proc/net/tcp6 stores IPv6 as 4 little-endian 32-bit groups,
		// reverse bytes within each group
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	ip := net.IPv4(b[3], b[2], b[1], b[0])
	return ip.String(), int(port)
}
