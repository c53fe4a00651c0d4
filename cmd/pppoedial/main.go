/*
The pppoedial command is a PPPoE discovery-stage client: it broadcasts
PADI on an Ethernet interface, negotiates with whichever Access
Concentrator answers, and prints the resulting session ID and AC
hardware address on success before sending PADT to terminate it.

pppoedial does not establish a PPP session on the session ID it
negotiates; it is a diagnostic and scripting tool for the discovery
handshake only.
*/
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/katalix/pppoe-discovery/client"
	"github.com/katalix/pppoe-discovery/pppoe"
	"github.com/katalix/pppoe-discovery/transport"
)

func main() {
	ifNamePtr := flag.String("interface", "", "specify the Ethernet interface to dial out on")
	serviceNamePtr := flag.String("service", "", "specify the requested service name (empty accepts any)")
	timeoutPtr := flag.Duration("timeout", 3*time.Second, "specify the per-attempt timeout")
	retriesPtr := flag.Int("retries", 3, "specify the number of retries")
	verbosePtr := flag.Bool("verbose", false, "toggle verbose log output")
	flag.Parse()

	if *ifNamePtr == "" {
		stdlog.Fatalf("must specify -interface")
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	if *verbosePtr {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	conn, err := transport.NewConn(*ifNamePtr, pppoe.EtherTypeDiscovery)
	if err != nil {
		stdlog.Fatalf("failed to open discovery connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		level.Info(logger).Log("message", "received signal, cancelling dial")
		cancel()
	}()
	defer cancel()

	session, err := client.Dial(ctx, conn, *serviceNamePtr,
		client.WithTimeout(*timeoutPtr),
		client.WithRetries(*retriesPtr))
	if err != nil {
		stdlog.Fatalf("dial failed: %v", err)
	}

	level.Info(logger).Log(
		"message", "discovery handshake complete",
		"session_id", session.SessionID,
		"ac_name", session.ACName,
		"peer_hwaddr", session.PeerHWAddr)

	if err := session.Close(conn.HWAddr()); err != nil {
		stdlog.Fatalf("failed to send PADT: %v", err)
	}
}
