package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/moby/term"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	if err := run(os.Args, os.Environ()); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				log.Error(exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		log.Fatal(err)
	}
}

func run(args, env []string) error {
	// Cancelling on SIGINT/SIGTERM lets running commands stop their
	// containers and release everything they registered for cleanup.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, stdout, stderr := term.StdStreams()

	return execute(ctx, NewApp(env, stdout, stderr), args[1:])
}
