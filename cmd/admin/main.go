// Package main provides admin management utilities for Echo Hole.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"echohole/internal/config"
	"echohole/internal/database"
	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/repository"
	"echohole/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin hash-password <password>   - Print a bcrypt hash for ADMIN_PASSWORD_HASH")
	fmt.Println("  go run ./cmd/admin purge-sessions            - Delete expired admin sessions")
	fmt.Println("  go run ./cmd/admin stats                     - Print post counts per status")
	fmt.Println("  go run ./cmd/admin prune-visits <days>       - Delete visits older than <days>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	// hash-password needs no configuration or database.
	if command == "hash-password" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin hash-password <password>")
			os.Exit(1)
		}
		hashPassword(os.Args[2])
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command {
	case "purge-sessions":
		purgeSessions(ctx, db, cfg)

	case "stats":
		printStats(ctx, db, cfg)

	case "prune-visits":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin prune-visits <days>")
			os.Exit(1)
		}
		pruneVisits(ctx, db, os.Args[2])

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func hashPassword(password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(string(hash))
}

func purgeSessions(ctx context.Context, db *gorm.DB, cfg *config.Config) {
	auth := service.NewAdminAuthService(repository.NewSessionRepository(db), service.AdminCredentials{
		Username: cfg.AdminUsername,
	})
	n, err := auth.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("Failed to purge sessions: %v", err)
	}
	fmt.Printf("Removed %d expired admin session(s)\n", n)
}

func printStats(ctx context.Context, db *gorm.DB, cfg *config.Config) {
	machine := moderation.NewMachine(moderation.Policy{RequirePreApproval: cfg.RequirePreApproval})
	svc := service.NewModerationService(repository.NewPostRepository(db), machine, nil, nil)

	counts, err := svc.StatusCounts(ctx)
	if err != nil {
		log.Fatalf("Failed to count posts: %v", err)
	}

	var total int64
	for _, status := range models.PersistedStatuses {
		fmt.Printf("%-10s %d\n", status, counts[status])
		total += counts[status]
	}
	fmt.Printf("%-10s %d\n", "total", total)
	fmt.Printf("review queue: %s (pre-approval: %t)\n", machine.ReviewQueue(), machine.Policy().RequirePreApproval)
}

func pruneVisits(ctx context.Context, db *gorm.DB, daysArg string) {
	days, err := strconv.Atoi(daysArg)
	if err != nil || days <= 0 {
		fmt.Printf("Invalid day count: %s\n", daysArg)
		os.Exit(1)
	}

	svc := service.NewAnalyticsService(repository.NewVisitRepository(db))
	n, err := svc.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to prune visits: %v", err)
	}
	fmt.Printf("Removed %d visit(s) older than %d day(s)\n", n, days)
}
