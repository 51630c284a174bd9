package logging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Prefix(t *testing.T) {
	var lines []string
	record := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	logger := NewLogger("watcher: ", LogFuncs{
		Infof:  record,
		Errorf: record,
	})

	logger.Infof("checking port %d", 1080)
	logger.Errorf("snapshot failed")

	assert.Equal(t, []string{
		"watcher: checking port 1080",
		"watcher: snapshot failed",
	}, lines)
}

func TestLogger_MissingFuncsAreIgnored(t *testing.T) {
	logger := NewLogger("x: ", LogFuncs{})

	// Must not panic with no functions wired
	logger.Debugf("debug")
	logger.Infof("info")
	logger.Warnf("warn")
	logger.Errorf("error")
}
