// File: cmd/muxechod/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// muxechod serves the tagged line protocol on 127.0.0.1:<port> and echoes
// every request.

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/momentics/hioload-mux/internal/cli"
	"github.com/momentics/hioload-mux/server"
)

func main() {
	addr, err := cli.LoopbackAddr(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stdout, "[muxechod] ", log.LstdFlags)
	cfg := server.DefaultConfig()
	cfg.ListenAddr = addr
	srv, err := server.NewServer(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Printf("startup failed: %v", err)
		os.Exit(1)
	}
	logger.Printf("Listening on %s", srv.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Println("Shutting down...")
		srv.Shutdown()
	}()

	if err := srv.Serve(); err != nil {
		logger.Printf("reactor loop failed: %v", err)
		os.Exit(1)
	}
}
