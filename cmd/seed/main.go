package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
	"github.com/orderdeskhq/orderdesk-backend/pkg/security"
)

// seed provisions a first login and optional demo catalog for fresh
// environments. Safe to re-run: existing rows are left alone.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	email := flag.String("email", "", "email for the seeded user")
	password := flag.String("password", "", "password for the seeded user")
	firstName := flag.String("first-name", "Order", "first name for the seeded user")
	lastName := flag.String("last-name", "Admin", "last name for the seeded user")
	admin := flag.Bool("admin", false, "grant the admin system role")
	demoProducts := flag.Bool("demo-products", false, "insert a small demo product catalog")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *email != "" {
		if *password == "" {
			fmt.Fprintln(os.Stderr, "missing -password for seeded user")
			os.Exit(1)
		}
		if err := seedUser(ctx, dbClient, cfg, *email, *password, *firstName, *lastName, *admin); err != nil {
			logg.Error(ctx, "failed to seed user", err)
			os.Exit(1)
		}
	}

	if *demoProducts {
		if err := seedProducts(ctx, dbClient); err != nil {
			logg.Error(ctx, "failed to seed products", err)
			os.Exit(1)
		}
	}

	if *email == "" && !*demoProducts {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -email or -demo-products")
		os.Exit(1)
	}

	logg.Info(ctx, "seed complete")
}

func seedUser(ctx context.Context, client *db.Client, cfg *config.Config, email, password, firstName, lastName string, admin bool) error {
	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	dto := users.CreateUserDTO{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if admin {
		role := "admin"
		dto.SystemRole = &role
	}

	repo := users.NewRepository(client.DB())
	user, err := repo.Create(ctx, dto)
	if db.IsUniqueViolation(err, "idx_users_email") {
		fmt.Println("user already exists, skipping:", dto.Email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Println("seeded user:", user.Email, "id:", user.ID)
	return nil
}

func seedProducts(ctx context.Context, client *db.Client) error {
	catalog := []models.Product{
		{Name: "Thermal Label Printer", Description: strPtr("4x6 direct thermal printer"), Stock: 25, Price: decimal.RequireFromString("189.99")},
		{Name: "Packing Tape (36 pack)", Description: strPtr("2in acrylic tape, clear"), Stock: 400, Price: decimal.RequireFromString("54.00")},
		{Name: "Bubble Mailer 8x11", Description: strPtr("self-seal poly bubble mailer"), Stock: 1200, Price: decimal.RequireFromString("0.32")},
		{Name: "Corrugated Box 12x9x4", Description: strPtr("single wall kraft box"), Stock: 800, Price: decimal.RequireFromString("0.78")},
	}

	gdb := client.DB().WithContext(ctx)
	for i := range catalog {
		var count int64
		if err := gdb.Model(&models.Product{}).Where("name = ?", catalog[i].Name).Count(&count).Error; err != nil {
			return fmt.Errorf("check product %q: %w", catalog[i].Name, err)
		}
		if count > 0 {
			continue
		}
		if err := gdb.Create(&catalog[i]).Error; err != nil {
			return fmt.Errorf("create product %q: %w", catalog[i].Name, err)
		}
		fmt.Println("seeded product:", catalog[i].Name)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
