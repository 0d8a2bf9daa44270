// nifpatch switches mesh materials to the PBR texture scheme according to
// rule documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Faultbox/nifpatch/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
