package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/website"
)

// Rebuilds the public website config from the collections, e.g. after a data import.
func main() {
	section := flag.String("section", website.SectionAll, "all, programs, gallery, testimonials, whatsapp or social")
	timeout := flag.Duration("timeout", time.Minute, "give up after this long")
	flag.Parse()

	cfg := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	projectID, err := cfg.RequireProjectID()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}
	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	docs, err := store.NewGorm(db, projectID)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create document store")
	}
	agg := website.NewAggregator(docs, services.New(docs))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, agg, *section); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, agg *website.Aggregator, section string) error {
	switch section {
	case website.SectionAll:
		_, err := agg.SyncAll(ctx)
		return err
	case website.SectionPrograms:
		return agg.SyncPrograms(ctx)
	case website.SectionGallery:
		return agg.SyncGallery(ctx)
	case website.SectionTestimonials:
		return agg.SyncTestimonials(ctx)
	case website.SectionWhatsApp:
		return agg.SyncWhatsApp(ctx)
	case website.SectionSocial:
		return agg.SyncSocialMedia(ctx)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
}
