package main

import (
	"context"
	"log"

	"bedrockapp/internal/app"
	"bedrockapp/internal/config"
	"bedrockapp/internal/devserver"
	"bedrockapp/internal/handlers"
)

func main() {
	config.LoadDotEnv()

	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	r := devserver.NewRouter(a.Invoke.Handle, a.Health.Handle, handlers.PageHandler, a.Log)

	a.Log.Infof("dev server listening on %s", a.Config.DevAddr)
	if err := r.Run(a.Config.DevAddr); err != nil {
		a.Log.Fatalf("dev server: %v", err)
	}
}
