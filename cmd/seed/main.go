package main

import (
	"context"
	"fmt"
	"log"

	"travelly/internal/flights"
	"travelly/internal/shared/config"
	"travelly/internal/shared/database"
	"travelly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Travelly Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"charter_bookings",
		"charter_flight_dates",
		"charter_flights",
		"charter_id_counters",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll creates demo users and charter flights with full ledgers.
func (s *Seeder) SeedAll() error {
	admin, err := s.seedUser("Ava Admin", "admin@travelly.dev", "admin123", users.RoleAdmin)
	if err != nil {
		return err
	}
	if _, err := s.seedUser("Max Manager", "manager@travelly.dev", "manager123", users.RoleManager); err != nil {
		return err
	}
	if _, err := s.seedUser("Clara Client", "client@travelly.dev", "client123", users.RoleClient); err != nil {
		return err
	}
	fmt.Println("  Seeded 3 users")

	flightRepo := flights.NewRepository(s.db.PostgreSQL)
	flightService := flights.NewService(flightRepo)

	demoFlights := []flights.CreateFlightRequest{
		{
			From:       "Kyiv",
			To:         "Antalya",
			DateFrom:   "2026-06-01",
			DateTo:     "2026-09-30",
			WeekDays:   []int{1, 3, 5},
			Categories: []string{"beach", "family"},
			SeatsTotal: 189,
		},
		{
			From:       "Warsaw",
			To:         "Hurghada",
			DateFrom:   "2026-10-01",
			DateTo:     "2027-03-31",
			WeekDays:   []int{2, 6},
			Categories: []string{"beach", "exotic", "last-minute"},
			SeatsTotal: 220,
		},
		{
			From:       "Prague",
			To:         "Innsbruck",
			DateFrom:   "2026-12-01",
			DateTo:     "2027-02-28",
			WeekDays:   []int{6, 7},
			Categories: []string{"ski"},
			SeatsTotal: 120,
		},
	}

	for _, req := range demoFlights {
		adminID := admin.ID
		created, err := flightService.CreateFlight(context.Background(), &adminID, req)
		if err != nil {
			return fmt.Errorf("failed to seed flight %s-%s: %w", req.From, req.To, err)
		}
		fmt.Printf("  Seeded flight %s (%s → %s)\n", created.PublicID, created.From, created.To)
	}

	return nil
}

func (s *Seeder) seedUser(name, email, password string, role users.Role) (*users.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	user := &users.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.db.PostgreSQL.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", email, err)
	}
	return user, nil
}
