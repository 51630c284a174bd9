//go:build !linux && !windows

package netstat

import (
	"runtime"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/logging"
)

type systemProvider struct{}

func NewSystemProvider(options Options, logger logging.Logger) Provider {
	return &systemProvider{}
}

func (p *systemProvider) Snapshot() ([]Connection, error) {
	return nil, errors.NewInternalError("connection table inspection is not supported on "+runtime.GOOS, nil)
}
