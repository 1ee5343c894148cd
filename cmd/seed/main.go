package main

import (
	"context"
	"fmt"

	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/domain"
	"wardrobe/internal/logger"
	"wardrobe/internal/repository"

	"go.uber.org/zap"
)

// sampleItems populates an empty wardrobe for local development.
var sampleItems = []domain.ClothingItem{
	{Name: "Red T-Shirt", Category: "Tops", MainColor: "Red", SecondaryColor: strPtr("White"), ImageURL: strPtr("https://example.com/red_tshirt.jpg"), Location: domain.LocationLondon},
	{Name: "Blue Jeans", Category: "Bottoms", MainColor: "Blue", SecondaryColor: strPtr("Black"), ImageURL: strPtr("https://example.com/blue_jeans.jpg"), Location: domain.LocationStockholm},
	{Name: "Green Jacket", Category: "Outerwear", MainColor: "Green", SecondaryColor: strPtr("Gray"), ImageURL: strPtr("https://example.com/green_jacket.jpg"), Location: domain.LocationLondon},
	{Name: "Black Sneakers", Category: "Footwear", MainColor: "Black", SecondaryColor: strPtr("White"), ImageURL: strPtr("https://example.com/black_sneakers.jpg"), Location: domain.LocationStockholm},
}

func strPtr(s string) *string { return &s }

// seed inserts every sample item and returns the created ids.
func seed(ctx context.Context, repo repository.ClothingRepository) ([]int64, error) {
	ids := make([]int64, 0, len(sampleItems))
	for _, sample := range sampleItems {
		item := sample
		item.Count = domain.DefaultCount
		if err := repo.Create(ctx, &item); err != nil {
			return ids, fmt.Errorf("failed to seed %q: %w", item.Name, err)
		}
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func main() {
	ctx := context.Background()

	dbConfig, err := config.LoadDatabase()
	if err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	log, err := logger.New("development")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(ctx, dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ids, err := seed(ctx, repository.NewClothingRepository(dbService.DB()))
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err), zap.Int64s("created_ids", ids))
	}

	log.Info("Sample data populated successfully", zap.Int64s("ids", ids))
}
