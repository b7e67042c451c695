package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"communications", "opportunities", "customers", "leads", "permission_flags", "grants", "access_requests", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminID := seedUser(db, "rizky@mail.com", "Rizky Admin", string(hash), "admin")
		salesID := seedUser(db, "dimas@mail.com", "Dimas Sales", string(hash), "standard")
		seedUser(db, "ayu@mail.com", "Ayu Sales", string(hash), "standard")

		if salesID != 0 {
			var count int64
			db.Raw("SELECT COUNT(1) FROM leads WHERE owner_id = ?", salesID).Scan(&count)
			if count == 0 {
				if err := db.Exec(
					"INSERT INTO leads (owner_id, name, email, company, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, now(), now())",
					salesID, "PT Maju Bersama", "contact@majubersama.co.id", "PT Maju Bersama", "referral", "new").Error; err != nil {
					log.Fatalf("failed to seed lead: %v", err)
				}
				fmt.Println("Seeded sample lead for", salesID)
			}
		}

		fmt.Println("Seeding complete. Admin:", adminID)
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash, role string) int64 {
	var id int64
	row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("user already exists:", email)
		return id
	}

	if err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
		email, name, passwordHash, role).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}

	row = db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err != nil {
		log.Fatalf("failed to read back user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return id
}
