package watcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/core-tools/hsu-sockswatch/pkg/logging"
	"github.com/core-tools/hsu-sockswatch/pkg/monitoring"
	"github.com/core-tools/hsu-sockswatch/pkg/netstat"
	"github.com/core-tools/hsu-sockswatch/pkg/notify"
)

// Run loads the configuration, starts the watcher loop and blocks until an
// operator interrupt. Returns nil on a clean interrupt, any error before the
// loop is a fatal startup failure.
func Run(configFile string, logger logging.Logger) error {
	logger.Infof("Watcher runner starting...")
	logger.Infof("Using CONFIGURATION FILE: %s", configFile)

	config, err := LoadOrInitConfig(configFile)
	if err != nil {
		return err
	}

	logger.Infof("Monitoring SOCKS port: %d", config.SocksPort)
	logger.Infof("Target ports: %v", config.TargetPorts)
	if config.ContainerName != "" {
		logger.Infof("Scoped to container: %s", config.ContainerName)
	}

	w := newFromConfig(config, logger)

	if err := w.Start(context.Background()); err != nil {
		return err
	}

	// Enable signal handling
	sig := make(chan os.Signal, 1)
	if runtime.GOOS == "windows" {
		signal.Notify(sig) // Unix signals not implemented on Windows
	} else {
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	}

	receivedSignal := <-sig
	logger.Infof("Watcher runner received signal: %v", receivedSignal)

	w.Stop()

	logger.Infof("Watcher runner stopped")
	return nil
}

// CheckOnce performs a single snapshot and classification and prints a
// machine-friendly result line, for operator spot checks.
func CheckOnce(configFile string, logger logging.Logger) error {
	config, err := LoadOrInitConfig(configFile)
	if err != nil {
		return err
	}

	provider := netstat.NewSystemProvider(
		netstat.Options{ContainerName: config.ContainerName},
		componentLogger("netstat", logger),
	)

	conns, err := provider.Snapshot()
	if err != nil {
		return err
	}

	fmt.Printf("proxy_in_use=%v target_active=%v established=%d\n",
		monitoring.ProxyInUse(conns, config.SocksPort),
		monitoring.Classify(conns, config.TargetPorts),
		len(netstat.Established(conns)),
	)
	return nil
}

func newFromConfig(config *Config, logger logging.Logger) *Watcher {
	provider := netstat.NewSystemProvider(
		netstat.Options{ContainerName: config.ContainerName},
		componentLogger("netstat", logger),
	)
	notifier := notify.NewDiscordNotifier(config.WebhookURL, componentLogger("notify", logger))

	options := Options{
		SocksPort:     config.SocksPort,
		TargetPorts:   config.TargetPorts,
		CheckInterval: time.Duration(config.CheckInterval) * time.Second,
	}
	return NewWatcher(options, provider, notifier, componentLogger("watcher", logger))
}

func componentLogger(component string, logger logging.Logger) logging.Logger {
	return logging.NewLogger(component+": ", logging.LogFuncs{
		Debugf: logger.Debugf,
		Infof:  logger.Infof,
		Warnf:  logger.Warnf,
		Errorf: logger.Errorf,
	})
}
