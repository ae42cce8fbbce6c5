// seed inserts an admin user, a few categories, and 25 cars into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/infrastructure/postgres"
	"github.com/fleetadmin/fleet-api/internal/password"
	"github.com/joho/godotenv"
)

const (
	seedEmail    = "admin@test.local"
	seedPassword = "localdev1"
)

var categories = []string{"SUV", "Sedan", "Hatchback", "Pickup", "Van"}

type carSpec struct {
	model string
	color string
}

var models = []carSpec{
	{"Civic", "Red"},
	{"Corolla", "White"},
	{"Model 3", "Black"},
	{"Golf", "Blue"},
	{"Ranger", "Silver"},
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if err := postgres.RunMigrations(ctx, databaseURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	cars := postgres.NewCarRepository(pool)

	hash, err := password.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}
	if _, err := users.Create(ctx, seedEmail, hash); err != nil {
		log.Printf("seed user: %v (continuing)", err)
	} else {
		log.Printf("seed user %s with password %q", seedEmail, seedPassword)
	}

	var categoryIDs []string
	for _, name := range categories {
		c, err := categoryRepo.Create(ctx, name)
		if err != nil {
			log.Printf("category %s: %v (continuing)", name, err)
			existing, ferr := categoryRepo.FindByName(ctx, name)
			if ferr != nil {
				log.Fatalf("find category %s: %v", name, ferr)
			}
			categoryIDs = append(categoryIDs, existing.ID)
			continue
		}
		categoryIDs = append(categoryIDs, c.ID)
	}

	// 25 cars: enough for three pages at the default page size.
	for i := 0; i < 25; i++ {
		spec := models[i%len(models)]
		car := &domain.Car{
			Model:          spec.model,
			Color:          spec.color,
			RegistrationNo: fmt.Sprintf("SEED%03d", i+1),
			CategoryID:     categoryIDs[i%len(categoryIDs)],
		}
		if _, err := cars.Create(ctx, car); err != nil {
			log.Printf("car %s: %v (continuing)", car.RegistrationNo, err)
		}
	}

	log.Println("seed complete")
}
