// Command vplan is the monorepo release planner's CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/versionplan/versionplan/internal/cliapp"
)

// shutdownTimeout bounds how long a graceful shutdown waits before a
// second signal or the timeout forces an exit.
const shutdownTimeout = 30 * time.Second

var exitFunc = os.Exit

func main() {
	ctx := context.Background()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	exitCode := run(ctx, sigChan, ExecuteContext, os.Stderr, exitFunc)
	exitFunc(exitCode)
}

func run(ctx context.Context, sigChan <-chan os.Signal, execute func(context.Context) error, stderr io.Writer, exitFn func(int)) int {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	done := make(chan struct{})

	if sigChan != nil {
		go func() {
			sig := <-sigChan
			fmt.Fprintf(stderr, "\nreceived signal %v, shutting down...\n", sig)
			cancel()

			timer := time.NewTimer(shutdownTimeout)
			defer timer.Stop()

			select {
			case <-done:
				return
			case <-timer.C:
				fmt.Fprintf(stderr, "shutdown timeout (%v) exceeded, forcing exit\n", shutdownTimeout)
				exitFn(1)
			case sig = <-sigChan:
				fmt.Fprintf(stderr, "received second signal %v, forcing exit\n", sig)
				exitFn(1)
			}
		}()
	}

	var exitCode int
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := execute(ctx); err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(stderr, "operation canceled")
				exitCode = 130
				return
			}
			exitCode = cliapp.Fail(err)
		}
	}()
	wg.Wait()

	close(done)
	cancel()
	return exitCode
}
