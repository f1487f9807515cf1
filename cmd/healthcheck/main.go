// Package main provides a tiny health probe binary, suitable as a
// container HEALTHCHECK command: exit 0 when the service answers 200,
// exit 1 otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmarkhas/renderdeploy-go/internal/config"
	"github.com/dmarkhas/renderdeploy-go/internal/probe"
)

func main() {
	retries := flag.Int("retries", 0, "retry transient failures this many times")
	timeout := flag.Duration("timeout", 0, "per-request timeout (default from HEALTHCHECK_TIMEOUT)")
	flag.Parse()

	cfg, err := config.LoadForMode(config.ProbeMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	url := cfg.HealthcheckURL
	if url == "" {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		url = fmt.Sprintf("http://localhost:%s%s", port, cfg.HealthPath)
	}

	perRequest := cfg.HealthcheckTimeout
	if *timeout > 0 {
		perRequest = *timeout
	}

	p := probe.New(perRequest)
	ctx := context.Background()

	if *retries > 0 {
		err = p.WaitHealthy(ctx, url, *retries, time.Second)
	} else {
		err = p.Probe(ctx, url)
	}
	if err != nil {
		os.Exit(1)
	}
}
