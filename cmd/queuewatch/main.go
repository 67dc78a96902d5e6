// Command queuewatch signs in as a shop owner and follows the print queue,
// logging a status breakdown whenever it changes. It uses the realtime feed
// and falls back to polling when the feed drops.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"printhub/internal/realtime"
	"printhub/pkg/auth"
	"printhub/pkg/client"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const ServiceName = "queuewatch"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	authURL := flag.String("auth-url", envOr("PRINTHUB_AUTH_URL", "http://localhost:8083"), "auth service base URL")
	queueURL := flag.String("queue-url", envOr("PRINTHUB_QUEUE_URL", "http://localhost:8080"), "print queue service base URL")
	email := flag.String("email", os.Getenv("PRINTHUB_EMAIL"), "shop owner email")
	poll := flag.Duration("poll", realtime.DefaultPollInterval, "polling interval once the realtime feed fails")
	level := flag.String("log-level", logger.INFO, "log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *level, Format: logger.TEXT, Service: ServiceName})

	password := os.Getenv("PRINTHUB_PASSWORD")
	if *email == "" || password == "" {
		log.Fatal("email and PRINTHUB_PASSWORD are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authClient := client.NewAuthClient(*authURL)
	tokens, err := authClient.SignIn(ctx, *email, password)
	if err != nil {
		log.Fatal("Sign in failed", "error", err)
	}
	shopOwnerID := auth.UserIDFromToken(tokens.AccessToken)
	log.Info("Signed in", "shop_owner_id", shopOwnerID, "expires_at", tokens.ExpiresAt)

	refresher := auth.NewRefresher(*tokens, authClient.Refresh)
	watcher := realtime.NewWatcher(
		shopOwnerID,
		client.NewEventStream(*queueURL, refresher.Token),
		client.NewPrintJobsClient(*queueURL, refresher.Token),
		*poll,
		log,
	)
	watcher.OnChange(func(jobs []*model.PrintJob) {
		log.Info("Queue changed", "jobs", len(jobs), "by_status", countByStatus(jobs))
	})

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("Watcher stopped", "error", err)
	}

	signOutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := authClient.SignOut(signOutCtx, refresher.Current().RefreshToken); err != nil {
		log.Warn("Sign out failed", "error", err)
	}
}

func countByStatus(jobs []*model.PrintJob) map[model.JobStatus]int {
	counts := make(map[model.JobStatus]int)
	for _, j := range jobs {
		counts[j.Status]++
	}
	return counts
}
