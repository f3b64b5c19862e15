package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bevalen/tune-energy-ocr-ui/internal/cli"
	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

func main() {
	cfg := common.LoadConfig()
	logger, cleanup := common.SetupLogger(cfg.Batch.LogFile, common.ParseLogLevel(os.Getenv("LOG_LEVEL")))
	defer func() { _ = cleanup() }()

	if err := cli.Serve(context.Background(), cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, "billsd:", err)
		os.Exit(1)
	}
}
