// File: cmd/pipesink/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// pipesink copies every byte received on 127.0.0.1:<port> to stdout.

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/momentics/hioload-mux/internal/cli"
	"github.com/momentics/hioload-mux/pipe"
)

func main() {
	addr, err := cli.LoopbackAddr(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "[pipesink] ", log.LstdFlags)
	sink, err := pipe.Listen(addr, pipe.DefaultMaxConns, os.Stdout, logger)
	if err != nil {
		logger.Printf("startup failed: %v", err)
		os.Exit(1)
	}
	logger.Printf("Listening on %s", sink.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		sink.Close()
	}()

	if err := sink.Serve(); err != nil {
		logger.Printf("accept loop failed: %v", err)
		os.Exit(1)
	}
}
