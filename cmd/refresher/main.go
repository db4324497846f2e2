package main

import (
	"context"
	"os"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/app"
)

func main() {
	application := app.New()
	os.Exit(application.Run(context.Background()))
}
