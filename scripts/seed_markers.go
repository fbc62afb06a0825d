package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/maartenverheul/Trek/internal/config"
	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store/pgstore"
)

type seedMarker struct {
	title    string
	lat, lng float64
	category string
	rating   int
	notes    string
}

var sampleMarkers = []seedMarker{
	{"Cafe de Pels", 52.368718, 4.886475, "Food", 8, "Great coffee, gets busy on weekends"},
	{"Vondelpark", 52.358415, 4.868454, "Parks", 9, "Enter from the north side"},
	{"Rijksmuseum", 52.359996, 4.885215, "Culture", 9, ""},
	{"Foodhallen", 52.366014, 4.868801, "Food", 7, "Try the bitterballen stand"},
	{"Westerpark", 52.386890, 4.873793, "Parks", 8, ""},
	{"NEMO Science Museum", 52.374141, 4.912363, "Culture", 6, "Rooftop terrace is free"},
	{"Winkel 43", 52.379189, 4.886102, "Food", 10, "The apple pie"},
	{"Amsterdamse Bos", 52.311899, 4.826087, "Parks", 7, "Rent a canoe in summer"},
}

var categoryColors = map[string]string{
	"Food":    "#e74c3c",
	"Parks":   "#27ae60",
	"Culture": "#8e44ad",
}

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := pgstore.New(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Signing in creates the user and their first map when they do not exist.
	user, err := db.SignInUser(ctx, "demo")
	if err != nil {
		log.Fatalf("Could not create demo user: %v", err)
	}
	fmt.Printf("Seeding markers for user %q (id %d)\n", user.Name, user.ID)

	description := "Favourite spots around Amsterdam"
	seedMap, err := db.CreateMap(ctx, models.NewMap{
		Title:       "City Walks",
		Description: &description,
		UserID:      user.ID,
	})
	if err != nil {
		log.Fatalf("Could not create map: %v", err)
	}

	categoryIDs := make(map[string]int)
	for name, color := range categoryColors {
		c := color
		created, err := db.CreateCategory(ctx, models.NewCategory{
			Title: name,
			Color: &c,
			MapID: seedMap.ID,
		})
		if err != nil {
			log.Fatalf("Could not create category %q: %v", name, err)
		}
		categoryIDs[name] = created.ID
	}

	inserted := 0
	for _, m := range sampleMarkers {
		categoryID := categoryIDs[m.category]
		rating := m.rating
		_, err := db.CreateMarker(ctx, models.NewMarker{
			Title:      m.title,
			Lat:        m.lat,
			Lng:        m.lng,
			Notes:      m.notes,
			Rating:     &rating,
			MapID:      seedMap.ID,
			CategoryID: &categoryID,
		})
		if err != nil {
			log.Printf("Error inserting marker %q: %v", m.title, err)
			continue
		}
		inserted++
	}

	fmt.Printf("Inserted %d markers on map %q (id %d)\n", inserted, seedMap.Title, seedMap.ID)
}
