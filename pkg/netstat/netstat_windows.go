//go:build windows

package netstat

import (
	"fmt"
	"net"
	"unsafe"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/logging"

	"golang.org/x/sys/windows"
)

var (
	iphlpapi           = windows.NewLazySystemDLL("iphlpapi.dll")
	procGetExtendedTcp = iphlpapi.NewProc("GetExtendedTcpTable")
)

const (
	afInet              = 2
	afInet6             = 23
	tcpTableOwnerPIDAll = 5
)

type mibTCPRowOwnerPID struct {
	State      uint32
	LocalAddr  uint32
	LocalPort  uint32
	RemoteAddr uint32
	RemotePort uint32
	OwningPID  uint32
}

type mibTCP6RowOwnerPID struct {
	LocalAddr     [16]byte
	LocalScopeID  uint32
	LocalPort     uint32
	RemoteAddr    [16]byte
	RemoteScopeID uint32
	RemotePort    uint32
	State         uint32
	OwningPID     uint32
}

type systemProvider struct {
	options Options
	logger  logging.Logger
}

// NewSystemProvider returns a provider backed by the extended TCP tables of
// iphlpapi. Container scoping is not available on Windows.
func NewSystemProvider(options Options, logger logging.Logger) Provider {
	return &systemProvider{
		options: options,
		logger:  logger,
	}
}

func (p *systemProvider) Snapshot() ([]Connection, error) {
	if p.options.ContainerName != "" {
		return nil, errors.NewValidationError("container scoping is not supported on windows", nil).
			WithContext("container", p.options.ContainerName)
	}

	conns, err := tcpTableForFamily(afInet)
	if err != nil {
		return nil, err
	}
	conns6, err := tcpTableForFamily(afInet6)
	if err != nil {
		// IPv6 table failure leaves the IPv4 snapshot usable
		p.logger.Debugf("IPv6 TCP table unavailable: %v", err)
		return conns, nil
	}
	return append(conns, conns6...), nil
}

func tcpTableForFamily(family uint32) ([]Connection, error) {
	var size uint32

	r0, _, _ := procGetExtendedTcp.Call(
		0,
		uintptr(unsafe.Pointer(&size)),
		0,
		uintptr(family),
		uintptr(tcpTableOwnerPIDAll),
		0,
	)

	const errorInsufficientBuffer = 122
	if r0 != uintptr(errorInsufficientBuffer) && r0 != 0 {
		return nil, errors.NewSnapshotError(fmt.Sprintf("GetExtendedTcpTable size query failed: %d", r0), nil)
	}
	if size == 0 {
		return nil, errors.NewSnapshotError("GetExtendedTcpTable returned size 0", nil)
	}

	buf := make([]byte, size)

	r0, _, e1 := procGetExtendedTcp.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0,
		uintptr(family),
		uintptr(tcpTableOwnerPIDAll),
		0,
	)
	if r0 != 0 {
		return nil, errors.NewSnapshotError(fmt.Sprintf("GetExtendedTcpTable failed (code=%d)", r0), e1)
	}

	bufPtr := uintptr(unsafe.Pointer(&buf[0]))
	numEntries := *(*uint32)(unsafe.Pointer(bufPtr))
	firstRowPtr := bufPtr + unsafe.Sizeof(numEntries)

	var conns []Connection

	switch family {
	case afInet:
		rowSize := unsafe.Sizeof(mibTCPRowOwnerPID{})
		for i := uint32(0); i < numEntries; i++ {
			row := (*mibTCPRowOwnerPID)(unsafe.Pointer(firstRowPtr + uintptr(i)*rowSize))
			conns = append(conns, Connection{
				Protocol:   "TCP",
				LocalAddr:  ipv4FromDWORD(row.LocalAddr),
				LocalPort:  ntohs(row.LocalPort),
				RemoteAddr: ipv4FromDWORD(row.RemoteAddr),
				RemotePort: ntohs(row.RemotePort),
				State:      tcpStateToString(row.State),
				PID:        int(row.OwningPID),
			})
		}
	case afInet6:
		rowSize := unsafe.Sizeof(mibTCP6RowOwnerPID{})
		for i := uint32(0); i < numEntries; i++ {
			row := (*mibTCP6RowOwnerPID)(unsafe.Pointer(firstRowPtr + uintptr(i)*rowSize))
			conns = append(conns, Connection{
				Protocol:   "TCP6",
				LocalAddr:  net.IP(row.LocalAddr[:]).String(),
				LocalPort:  ntohs(row.LocalPort),
				RemoteAddr: net.IP(row.RemoteAddr[:]).String(),
				RemotePort: ntohs(row.RemotePort),
				State:      tcpStateToString(row.State),
				PID:        int(row.OwningPID),
			})
		}
	}

	return conns, nil
}

func ipv4FromDWORD(addr uint32) string {
	b := []byte{
		byte(addr),
		byte(addr >> 8),
		byte(addr >> 16),
		byte(addr >> 24),
	}
	return net.IP(b).String()
}

// Ports in MIB rows are in network byte order in the low 16 bits
func ntohs(p uint32) int {
	v := uint16(p)
	return int((v >> 8) | (v << 8))
}

// MIB_TCP_STATE values from tcpmib.h
func tcpStateToString(s uint32) string {
	switch s {
	case 2:
		return StateListen
	case 5:
		return StateEstablished
	case 1:
		return "CLOSED"
	case 3:
		return "SYN_SENT"
	case 4:
		return "SYN_RECV"
	case 6:
		return "FIN_WAIT1"
	case 7:
		return "FIN_WAIT2"
	case 8:
		return "CLOSE_WAIT"
	case 9:
		return "CLOSING"
	case 10:
		return "LAST_ACK"
	case 11:
		return "TIME_WAIT"
	case 12:
		return "DELETE_TCB"
	default:
		return StateUnknown
	}
}
