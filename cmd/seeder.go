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

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			// borrowing_history first, FKs restrict deleting referenced rows
			for _, table := range []string{"borrowing_history", "items", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		users := []struct {
			Username string
			Email    string
			FullName string
			Role     string
		}{
			{"admin", "admin@mail.com", "Warehouse Admin", "admin"},
			{"dina", "dina@mail.com", "Dina Lestari", "user"},
			{"bayu", "bayu@mail.com", "Bayu Pratama", "user"},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists; skipping\n", u.Username)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (username, email, full_name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, now())",
				u.Username, u.Email, u.FullName, u.Role, string(hash),
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username)
		}

		items := []struct {
			Name      string
			AssetCode string
			Condition string
			Location  string
		}{
			{"Dell Latitude 5440", "LPT-001", "good", "Cabinet A1"},
			{"Dell Latitude 5440", "LPT-002", "excellent", "Cabinet A1"},
			{"Epson EB-X500 Projector", "PRJ-001", "good", "Cabinet B2"},
			{"Logitech MX Master 3", "MSE-001", "fair", "Drawer C1"},
			{"HDMI Cable 3m", "CBL-001", "good", "Drawer C2"},
		}

		for _, it := range items {
			var exists int
			row := db.Raw("SELECT 1 FROM items WHERE asset_code = ?", it.AssetCode).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("item %s already exists; skipping\n", it.AssetCode)
				continue
			}

			if err := db.Exec(
				"INSERT INTO items (name, asset_code, condition, quantity, storage_location, created_at, updated_at) VALUES (?, ?, ?, 1, ?, now(), now())",
				it.Name, it.AssetCode, it.Condition, it.Location,
			).Error; err != nil {
				log.Fatalf("failed to insert item %s: %v", it.AssetCode, err)
			}
			fmt.Println("Seeded item:", it.AssetCode)
		}

		fmt.Println("Seeding completed")
		closeSeederDB(db)
	},
}

func closeSeederDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
