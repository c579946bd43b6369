package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/aicmd-go/internal/infrastructure/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	root, cleanup := cli.NewRootCmd(ctx, cli.Options{Verbose: isVerbose()})
	defer cleanup()

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("AICMD_DEBUG"), "1") || strings.EqualFold(os.Getenv("AICMD_DEBUG"), "true")
}
