//go:build linux

package netstat

import (
	"os"
	"runtime"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/logging"

	"github.com/vishvananda/netns"
)

type systemProvider struct {
	options Options
	logger  logging.Logger
}

// NewSystemProvider returns a provider backed by the /proc/net socket tables,
// optionally scoped to a container's network namespace.
func NewSystemProvider(options Options, logger logging.Logger) Provider {
	return &systemProvider{
		options: options,
		logger:  logger,
	}
}

func (p *systemProvider) Snapshot() ([]Connection, error) {
	if p.options.ContainerName == "" {
		return readProcTables("/proc/net")
	}
	return p.snapshotInContainer()
}

// snapshotInContainer reads the socket tables from inside the container's
// network namespace. The OS thread stays locked for the duration so the
// namespace switch cannot leak into other goroutines, and the original
// namespace is restored before returning.
func (p *systemProvider) snapshotInContainer() ([]Connection, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origin, err := netns.Get()
	if err != nil {
		return nil, errors.NewSnapshotError("failed to capture current network namespace", err)
	}
	defer origin.Close()

	handle, err := p.containerNamespace()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	if err := netns.Set(handle); err != nil {
		return nil, errors.NewPermissionError("failed to enter container network namespace", err).
			WithContext("container", p.options.ContainerName)
	}
	defer netns.Set(origin)

	// /proc/net follows the main thread of the process, only
	// /proc/thread-self reflects the namespace of the locked thread
	return readProcTables("/proc/thread-self/net")
}

func (p *systemProvider) containerNamespace() (netns.NsHandle, error) {
	handle, err := netns.GetFromDocker(p.options.ContainerName)
	if err == nil {
		return handle, nil
	}
	p.logger.Debugf("No docker namespace for %s, trying named namespaces: %v", p.options.ContainerName, err)

	handle, err = netns.GetFromName(p.options.ContainerName)
	if err == nil {
		return handle, nil
	}

	if os.IsPermission(err) {
		return handle, errors.NewPermissionError("insufficient privilege to open container network namespace", err).
			WithContext("container", p.options.ContainerName)
	}
	return handle, errors.NewNotFoundError("container network namespace not found", err).
		WithContext("container", p.options.ContainerName)
}

func readProcTables(dir string) ([]Connection, error) {
	var conns []Connection
	opened := 0

	tables := []struct {
		file  string
		proto string
		ipv6  bool
	}{
		{"tcp", "TCP", false},
		{"tcp6", "TCP6", true},
	}

	for _, table := range tables {
		f, err := os.Open(dir + "/" + table.file)
		if err != nil {
			if os.IsPermission(err) {
				return nil, errors.NewPermissionError("insufficient privilege to read socket table", err).
					WithContext("path", dir+"/"+table.file)
			}
			// tcp6 is absent on hosts without IPv6, not an error
			continue
		}
		conns = append(conns, parseProcNet(f, table.proto, table.ipv6)...)
		f.Close()
		opened++
	}

	if opened == 0 {
		return nil, errors.NewSnapshotError("no socket tables readable", nil).WithContext("dir", dir)
	}
	return conns, nil
}
