package main

import (
	"context"
	"os"

	"github.com/yaklabco/cargo-wop/cmd/wop"
	"github.com/yaklabco/cargo-wop/pkg/errs"
)

func main() {
	os.Exit(actualMain())
}

// actualMain returns cargo's exit code for failed cargo runs, 2 for usage
// errors and 1 for anything else. fang has already printed the error.
func actualMain() int {
	ctx := context.Background()

	rootCmd := wop.NewRootCmd(ctx)

	return errs.ExitStatus(wop.ExecuteWithFang(ctx, rootCmd))
}
