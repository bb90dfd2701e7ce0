package main

import (
	"fmt"
	"os"

	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/logging"
)

func main() {
	cfg := config.Load()
	c := &cli{
		cfg:    cfg,
		logger: logging.NewTo(os.Stderr, cfg.LogLevel, "text"),
	}
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
