// Command kmsgclient is a minimal, non-interactive consumer of the
// client driver. Terminal UI rendering, interactive input editing, and
// color/prompt helpers are out of scope (§1 Non-goals) -- this binary
// only exercises the driver's send/receive/poll surface from flags.
//
// Usage:
//
//	kmsgclient --name alice --send-to bob --message "hi"
//	kmsgclient --name bob --listen-from alice
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kuyugama/kmessenger/client"
	kmlog "github.com/kuyugama/kmessenger/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("kmsgclient", flag.ContinueOnError)
	host := fs.String("host", "localhost", "server host")
	port := fs.Int("port", 6074, "server port")
	name := fs.String("name", "", "this client's name (required)")
	sendTo := fs.String("send-to", "", "receiver name for a one-shot send")
	message := fs.String("message", "", "message body for a one-shot send")
	listenFrom := fs.String("listen-from", "", "sender name to poll for and print messages from")
	pollInterval := fs.Duration("poll-interval", client.DefaultPollInterval, "background poll cadence")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		return 2
	}

	logger := kmlog.Default().Module("cmd")

	d := client.New(*host, *port, []byte(*name))
	d.PollInterval = *pollInterval
	if err := d.Start(); err != nil {
		logger.Error("failed to start driver", "error", err)
		return 1
	}
	defer d.Stop()

	if *sendTo != "" {
		if err := d.SendMessage([]byte(*sendTo), []byte(*message)); err != nil {
			logger.Error("send_message failed", "error", err)
			return 1
		}
		fmt.Printf("sent to %s\n", *sendTo)
	}

	if *listenFrom == "" {
		return 0
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d.Poll([]byte(*listenFrom), func(messages [][]byte) {
		for _, m := range messages {
			fmt.Printf("%s: %s\n", *listenFrom, m)
		}
	}, func(err error) {
		logger.Warn("poll failed", "error", err)
	})

	<-sigCh
	logger.Info("shutting down")
	return 0
}
