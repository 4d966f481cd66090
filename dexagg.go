package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/config"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/handler"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
)

var configFile = flag.String("f", "etc/dexagg.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	handler.RegisterHandlers(server, ctx)

	ctx.Refresh.Start(context.Background())
	defer ctx.Refresh.Stop()
	defer ctx.Hub.Close()

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
