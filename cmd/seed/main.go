package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	"github.com/spf-popaccueil/popaccueil-backend/internal/db"
	"github.com/spf-popaccueil/popaccueil-backend/internal/mailer"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/redis"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"gorm.io/gorm"
)

// Imports members from a spreadsheet. Each new member gets a random password
// and a reset mail so they can choose their own.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <members.xlsx> [--yes]")
	}
	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "--yes"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: "console", EnableColor: true})
	util.SetBcryptCost(cfg.Auth.BcryptCost)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	members, summary, err := readMembersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", summary.Rows)
	fmt.Printf("  Valid members: %d\n", summary.Valid)
	fmt.Printf("  Skipped rows: %d\n", summary.Skipped)
	fmt.Printf("  Duplicate emails: %d\n", summary.Duplicate)

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Queued mail is delivered by the server's worker.
	mail := mailer.NewDispatcher(&cfg.Mail)
	if cfg.Mail.QueueEnabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redis.Close()
		mail = mailer.NewQueueDispatcher(redis.GetClient(), mailer.DefaultQueueKey)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	issuer := service.NewTokenIssuer(repository.NewTokenRepository(db.GetDB()))
	codec := util.NewResetTokenCodec(cfg.Auth.ResetTokenSecret, cfg.Auth.ResetTokenExpiry, nil)
	resets := service.NewPasswordResetService(userRepo, codec, issuer, mail)

	result := importMembers(context.Background(), userRepo, resets, members)

	fmt.Println("Import completed!")
	fmt.Printf("  Created: %d\n", result.Created)
	fmt.Printf("  Already registered: %d\n", result.Existing)
	fmt.Printf("  Failed: %d\n", result.Failed)
}

type importResult struct {
	Created  int
	Existing int
	Failed   int
}

type resetRequester interface {
	RequestReset(ctx context.Context, email string) error
}

// importMembers creates members that do not exist yet and sends each a reset
// mail. Existing accounts are left untouched.
func importMembers(ctx context.Context, users repository.UserRepository, resets resetRequester, members []memberRow) importResult {
	var result importResult

	for _, m := range members {
		if _, err := users.FindByEmail(m.Email); err == nil {
			result.Existing++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to look up member", err, map[string]interface{}{"line": m.Line})
			result.Failed++
			continue
		}

		password, err := util.GenerateRandomPassword()
		if err != nil {
			logger.Error("Failed to generate password", err, map[string]interface{}{"line": m.Line})
			result.Failed++
			continue
		}

		user := &model.User{
			Email:            m.Email,
			FirstName:        m.FirstName,
			LastName:         m.LastName,
			PopAccueilNumber: m.PopAccueilNumber,
			IsVolunteer:      m.IsVolunteer,
		}
		if err := user.SetPassword(password); err != nil {
			result.Failed++
			continue
		}
		if err := users.Create(user); err != nil {
			logger.Error("Failed to create member", err, map[string]interface{}{"line": m.Line})
			result.Failed++
			continue
		}
		result.Created++

		if err := resets.RequestReset(ctx, user.Email); err != nil {
			logger.Warn("Member created but reset mail could not be prepared", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}

	return result
}
