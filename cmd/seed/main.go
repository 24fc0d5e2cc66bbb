package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zuvomo/internal/config"
	"zuvomo/internal/db"
	"zuvomo/internal/model"
	"zuvomo/internal/repository"
)

// seedUser is an account the seed guarantees to exist.
type seedUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
	Status    model.ApprovalStatus
	Company   string
	Focus     string
	RangeMin  int64
	RangeMax  int64
}

var seedUsers = []seedUser{
	{Email: "admin@zuvomo.com", Password: "admin123", FirstName: "Zuvomo", LastName: "Admin", Role: model.RoleAdmin, Status: model.ApprovalApproved},
	{Email: "founder@zuvomo.com", Password: "founder123", FirstName: "Demo", LastName: "Founder", Role: model.RoleProjectOwner, Status: model.ApprovalApproved, Company: "Demo Labs"},
	{Email: "investor@zuvomo.com", Password: "investor123", FirstName: "Demo", LastName: "Investor", Role: model.RoleInvestor, Status: model.ApprovalApproved, Focus: "fintech", RangeMin: 10000, RangeMax: 250000},
	{Email: "pending@zuvomo.com", Password: "pending123", FirstName: "Pending", LastName: "Founder", Role: model.RoleProjectOwner, Status: model.ApprovalPending, Company: "Waiting Co"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.LoadAPI()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	seeded, updated, err := seedAccounts(ctx, userRepo, seedUsers)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", seeded)
	log.Printf("  - Existing users updated: %d", updated)
}

// seedAccounts creates missing users and resets role, status and password
// on existing ones.
func seedAccounts(ctx context.Context, repo repository.UserRepository, users []seedUser) (seeded int, updated int, err error) {
	for _, su := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return seeded, updated, fmt.Errorf("hash password for %s: %w", su.Email, err)
		}

		existing, err := repo.FindByEmail(ctx, su.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, updated, fmt.Errorf("error checking user %s: %w", su.Email, err)
		}

		user := existing
		if user == nil {
			user = &model.User{Email: su.Email}
		}
		user.PasswordHash = string(hash)
		user.FirstName = su.FirstName
		user.LastName = su.LastName
		user.Role = su.Role
		user.ApprovalStatus = su.Status
		user.Company = su.Company
		user.InvestmentFocus = su.Focus
		if su.RangeMax > 0 {
			lo, hi := decimal.NewFromInt(su.RangeMin), decimal.NewFromInt(su.RangeMax)
			user.InvestmentRangeMin, user.InvestmentRangeMax = &lo, &hi
		}
		if su.Status == model.ApprovalApproved && user.ApprovedAt == nil {
			now := time.Now()
			user.ApprovedAt = &now
		}

		if existing != nil {
			if err := repo.Update(ctx, user); err != nil {
				return seeded, updated, fmt.Errorf("error updating user %s: %w", su.Email, err)
			}
			updated++
			continue
		}
		if err := repo.Create(ctx, user); err != nil {
			return seeded, updated, fmt.Errorf("error creating user %s: %w", su.Email, err)
		}
		log.Printf("Created %s (%s)", su.Email, su.Role)
		seeded++
	}

	return seeded, updated, nil
}
