package main

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"myhometech/internal/config"
	"myhometech/internal/database"
	"myhometech/internal/domain/address"
	"myhometech/internal/domain/appliance"
	"myhometech/internal/domain/auth"
	"myhometech/internal/domain/profile"
	"myhometech/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if database.IsPostgres(cfg.Database.DSN) && cfg.AppEnv != "dev" {
		log.Fatal("refusing to seed a non-dev PostgreSQL database")
	}

	db, err := database.Connect(cfg.Database.DSN, database.Options{})
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := schema.Migrate(db, nil); err != nil {
		log.Fatal(err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	for _, table := range []string{
		"ratings", "notifications", "alternative_date_proposals", "service_requests",
		"addresses", "appliances", "technicians", "clients", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	if err := db.Transaction(seed); err != nil {
		log.Fatal("seed failed:", err)
	}
	log.Println("Seed completed")
}

func seed(tx *gorm.DB) error {
	// ================== USERS ==================
	admin, err := createUser(tx, "Administrator", "admin@myhometech.local", "admin123", auth.RoleAdmin)
	if err != nil {
		return err
	}
	log.Printf("Admin created: %s / admin123", admin.Email)

	for i, email := range []string{"anna@example.com", "max@example.com"} {
		u, err := createUser(tx, fmt.Sprintf("Client %d", i+1), email, "client123", auth.RoleClient)
		if err != nil {
			return err
		}
		if err := tx.Create(&profile.Client{UserID: u.ID, Phone: fmt.Sprintf("+49 151 000 00%02d", i+1)}).Error; err != nil {
			return err
		}
		addr := address.Address{
			ClientID:   u.ID,
			Label:      "Home",
			Street:     fmt.Sprintf("Hauptstrasse %d", 10+i),
			City:       "Berlin",
			PostalCode: "10115",
			IsPrimary:  true,
		}
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}
	}
	log.Println("Clients created: password client123")

	specialties := [][]string{{"washing_machine", "dryer"}, {"refrigerator", "oven", "dishwasher"}}
	for i, email := range []string{"tom@example.com", "lena@example.com"} {
		u, err := createUser(tx, fmt.Sprintf("Technician %d", i+1), email, "tech123", auth.RoleTechnician)
		if err != nil {
			return err
		}
		tech := profile.Technician{
			UserID:          u.ID,
			Phone:           fmt.Sprintf("+49 152 000 00%02d", i+1),
			Specialties:     specialties[i],
			YearsExperience: 3 + 4*i,
		}
		if err := tx.Create(&tech).Error; err != nil {
			return err
		}
	}
	log.Println("Technicians created: password tech123")

	// ================== APPLIANCES ==================
	appliances := []appliance.Appliance{
		{Name: "Front-load washer", Brand: "Bosch", Model: "WAN28K40", Category: "washing_machine"},
		{Name: "Heat pump dryer", Brand: "Miele", Model: "TWC220WP", Category: "dryer"},
		{Name: "Fridge freezer", Brand: "Samsung", Model: "RB34T600", Category: "refrigerator"},
		{Name: "Built-in oven", Brand: "Siemens", Model: "HB578A0S0", Category: "oven"},
		{Name: "Dishwasher", Brand: "AEG", Model: "FSB53927Z", Category: "dishwasher"},
	}
	if err := tx.Create(&appliances).Error; err != nil {
		return err
	}
	log.Printf("Appliances created: %d", len(appliances))
	return nil
}

func createUser(tx *gorm.DB, name, email, password string, role auth.UserRole) (*auth.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &auth.User{Name: name, Email: email, PasswordHash: string(hash), Role: role, IsActive: true}
	if err := tx.Create(u).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	return u, nil
}
