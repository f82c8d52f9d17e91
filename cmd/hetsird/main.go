package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spboyer/hetsird/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every run completed
	ExitInstability = 1 // A run broke the conservation invariant
	ExitError       = 2 // Configuration or runtime error
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, models.ErrNumericalInstability):
		return ExitInstability
	default:
		return ExitError
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		os.Exit(exitCode(err))
	}
}
