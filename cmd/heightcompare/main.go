package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/heightcompare/internal/cli"
	hcerrors "github.com/matzehuels/heightcompare/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		if hcerrors.IsTransport(err) {
			fmt.Fprintln(os.Stderr, "hint: the catalog is unreachable; set [catalog] backend = \"seed\" to work offline")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	defer c.Close()

	root := c.RootCommand()
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}
