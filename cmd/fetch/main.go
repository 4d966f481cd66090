// Command fetch runs one aggregation cycle from the command line: it loads
// the service configuration, queries every configured DEX source and prints
// the merged token list. Useful for verifying provider credentials and rate
// limits without starting the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/aggregator"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/cache"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/config"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/dexscreener"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/geckoterminal"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/jupiter"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/ratelimit"
)

var (
	configFile = flag.String("f", "etc/dexagg.yaml", "the config file")
	asJSON     = flag.Bool("json", false, "print the full merged list as JSON")
	timeout    = flag.Duration("timeout", time.Minute, "overall fetch timeout")
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dexCfg := cfg.Providers.Value
	sources, err := dexCfg.BuildSources()
	if err != nil {
		log.Fatalf("build sources: %v", err)
	}

	// No redis here: the limiter runs without counters and the cache is off,
	// so every run hits the providers directly.
	limiter := ratelimit.New(nil, nil, ratelimit.DefaultBackoff())
	agg := aggregator.New(sources, limiter, cache.New(nil, false), aggregator.Options{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	tokens, err := agg.RefreshTokens(ctx)
	if err != nil {
		log.Fatalf("fetch: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tokens); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}

	fmt.Printf("%d tokens from %d sources\n", len(tokens), len(sources))
	for i, token := range tokens {
		if i == 20 {
			fmt.Printf("... and %d more\n", len(tokens)-i)
			break
		}
		fmt.Printf("%-44s %-10s vol %14.2f liq %14.2f sources %v\n",
			token.Address, token.Ticker, token.Volume, token.Liquidity, token.Sources)
	}
}
