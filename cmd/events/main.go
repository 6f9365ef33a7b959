package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/config"
	"github.com/givingprint/payment-service/internal/infrastructure/database"
	"github.com/givingprint/payment-service/pkg/logger"
)

// events lists webhook deliveries and lookup misses that need operator
// attention: failed or unprocessed events, and log entries that never
// resolved to a payment record.
func main() {
	var (
		showFailed     = flag.Bool("failed", false, "list failed and unprocessed webhook events")
		showUnresolved = flag.Bool("unresolved", false, "list log entries with no payment record")
		limit          = flag.Int("limit", 50, "maximum rows to list per section")
	)
	flag.Parse()

	if !*showFailed && !*showUnresolved {
		*showFailed = true
		*showUnresolved = true
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	repos := database.NewRepositories(db, cfg.Service.Backend, zapLogger)
	ctx := context.Background()

	if *showFailed {
		events, err := repos.Webhook.ListFailedEvents(ctx, *limit)
		if err != nil {
			zapLogger.Fatal("Failed to list webhook events", zap.Error(err))
		}

		fmt.Printf("Webhook events pending attention: %d\n", len(events))
		for _, ev := range events {
			cause := ""
			if ev.LastError != nil {
				cause = *ev.LastError
			}
			fmt.Printf("  %s  %-40s %-10s received=%s  %s\n",
				ev.ProviderEventID, ev.EventType, ev.Status,
				ev.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"), cause)
		}
	}

	if *showUnresolved {
		entries, err := repos.PaymentLog.ListUnresolved(ctx, *limit)
		if err != nil {
			zapLogger.Fatal("Failed to list unresolved log entries", zap.Error(err))
		}

		fmt.Printf("Log entries with no payment record: %d\n", len(entries))
		for _, entry := range entries {
			fmt.Printf("  %-24s %s  %s\n",
				entry.Status, entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), entry.Message)
		}
	}
}
