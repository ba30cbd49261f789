package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/myceliumAI/polypore/internal/config"
	"github.com/myceliumAI/polypore/internal/database"
	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/modules/reservation"
	"github.com/myceliumAI/polypore/internal/pkg/interval"
	jwtsvc "github.com/myceliumAI/polypore/internal/pkg/jwt"
	"github.com/myceliumAI/polypore/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM shoots")
	db.Exec("DELETE FROM items")

	log.Println("Creating items...")
	items := []domain.Item{
		{Name: "Sony FX3", Category: domain.CategoryCamera, TotalStock: 2},
		{Name: "Canon C70", Category: domain.CategoryCamera, TotalStock: 1},
		{Name: "Arri Skypanel S60", Category: domain.CategoryLight, TotalStock: 4},
		{Name: "Aputure 600d", Category: domain.CategoryLight, TotalStock: 3},
		{Name: "SDI cable 10m", Category: domain.CategoryCable, TotalStock: 20},
		{Name: "C-stand", Category: domain.CategoryOther, TotalStock: 12},
	}
	if err := db.Create(&items).Error; err != nil {
		log.Fatal("create items failed:", err)
	}

	log.Println("Creating shoots...")
	today := interval.DayStart(time.Now())
	shoots := make([]domain.Shoot, 0, 5)
	for i := 1; i <= 5; i++ {
		start := today.AddDate(0, 0, i*2).Add(9 * time.Hour)
		shoots = append(shoots, domain.Shoot{
			Name:      fmt.Sprintf("Shoot #%d", i),
			Location:  fmt.Sprintf("Stage %c", 'A'+rune(i-1)),
			StartTime: start,
			EndTime:   start.Add(9 * time.Hour),
		})
	}
	if err := db.Create(&shoots).Error; err != nil {
		log.Fatal("create shoots failed:", err)
	}

	log.Println("Creating reservations...")
	svc := reservation.NewService(repository.NewReservationRepository(db, cfg.TxMaxRetries), nil, nil)
	ctx := context.Background()
	created := 0
	for i, sh := range shoots {
		for j, item := range items {
			if (i+j)%2 != 0 {
				continue
			}
			qty := 1 + (i+j)%item.TotalStock
			if _, err := svc.Create(ctx, reservation.CreateReservationRequest{
				ItemID: item.ID, ShootID: sh.ID, Quantity: qty,
			}); err != nil {
				log.Printf("skip reservation item=%d shoot=%d qty=%d: %v", item.ID, sh.ID, qty, err)
				continue
			}
			created++
		}
	}

	token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken("seed-operator", jwtsvc.RoleOperator)
	if err != nil {
		log.Fatal("token generation failed:", err)
	}

	log.Printf("Seed complete: items=%d shoots=%d reservations=%d", len(items), len(shoots), created)
	fmt.Println("Operator token:")
	fmt.Println(token)
}
