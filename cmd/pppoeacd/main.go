/*
The pppoeacd command is a PPPoE Access Concentrator daemon: it listens
for PPPoE discovery packets on an Ethernet interface and answers PADI
with PADO and PADR with PADS, handing out session IDs for whichever
service names it has been configured to offer.

pppoeacd does not bring up a PPP session of its own on the session IDs
it allocates; pairing it with a PPP daemon on the assigned session ID
is left to the operator.

pppoeacd is configured using a TOML file; see the config package's
documentation for the format.
*/
package main

import (
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/katalix/pppoe-discovery/concentrator"
	"github.com/katalix/pppoe-discovery/config"
	"github.com/katalix/pppoe-discovery/pppoe"
	"github.com/katalix/pppoe-discovery/transport"
)

func newLogger(verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(os.Stderr)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

func run(cfg *config.Config, logger log.Logger) int {
	conn, err := transport.NewConn(cfg.InterfaceName, pppoe.EtherTypeDiscovery)
	if err != nil {
		level.Error(logger).Log("message", "failed to open discovery connection", "error", err)
		return 1
	}
	defer conn.Close()

	conc := concentrator.New(conn, conn.HWAddr(), cfg.ACName, cfg.Services, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	rxChan := make(chan []byte)
	go func() {
		for {
			buf := make([]byte, 1500)
			n, err := conn.Recv(buf)
			if err != nil {
				level.Error(logger).Log("message", "recv on discovery connection failed", "error", err)
				close(rxChan)
				return
			}
			rxChan <- buf[:n]
		}
	}()

	level.Info(logger).Log("message", "pppoeacd started",
		"interface", cfg.InterfaceName, "ac_name", cfg.ACName)

	for {
		select {
		case <-sigChan:
			level.Info(logger).Log("message", "received signal, shutting down")
			return 0
		case raw, ok := <-rxChan:
			if !ok {
				return 1
			}
			if err := conc.HandleFrame(raw); err != nil {
				level.Error(logger).Log("message", "failed to handle discovery frame", "error", err)
			}
		}
	}
}

func main() {
	cfgPathPtr := flag.String("config", "/etc/pppoeacd/pppoeacd.toml", "specify configuration file path")
	verbosePtr := flag.Bool("verbose", false, "toggle verbose log output")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPathPtr)
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	os.Exit(run(cfg, newLogger(*verbosePtr)))
}
