// Command server runs the study-workflow HTTP API.
//
// Configuration comes from environment variables (and an optional config
// file, see internal/config). The process exits cleanly on SIGINT/SIGTERM
// after draining in-flight requests.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/fernwood-lab/studyflow-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
