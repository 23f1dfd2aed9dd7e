package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	gomastodon "github.com/mattn/go-mastodon"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mizuki-h/artbot/bot/application"
	"github.com/mizuki-h/artbot/bot/domain"
	"github.com/mizuki-h/artbot/bot/persistence"
	"github.com/mizuki-h/artbot/shared/clients/danbooru"
	"github.com/mizuki-h/artbot/shared/clients/pixiv"
	"github.com/mizuki-h/artbot/shared/clients/twitter"
	"github.com/mizuki-h/artbot/shared/fetch"
	"github.com/mizuki-h/artbot/shared/logging"
)

const imagesDir = "images"

func main() {
	var (
		configPath string
		addMode    bool
		postOnce   bool
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:          "artbot",
		Short:        "Curates an image collection and reposts it to Mastodon on a timer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, addMode, postOnce, verbose)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to the config file")
	rootCmd.Flags().BoolVarP(&addMode, "add", "a", false, "interactively add images to the database")
	rootCmd.Flags().BoolVarP(&postOnce, "post", "p", false, "post a single update and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, addMode, postOnce, verbose bool) error {
	// Secrets may live in a .env next to the binary instead of the config.
	_ = godotenv.Load()

	logFile, err := logging.Setup(verbose)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cfg, err := domain.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	log.Info().
		Bool("twitter", cfg.HasTwitter()).
		Bool("danbooru", cfg.HasDanbooru()).
		Bool("pixiv", cfg.HasPixiv()).
		Msg("config loaded")

	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	store := persistence.NewStore(cfg.DBPath)

	if addMode {
		return runAdd(ctx, cfg, store)
	}

	masto := gomastodon.NewClient(&gomastodon.Config{
		Server:       "https://" + cfg.Mastodon.Domain,
		ClientID:     cfg.Mastodon.ClientID,
		ClientSecret: cfg.Mastodon.ClientSecret,
		AccessToken:  cfg.Mastodon.AccessToken,
	})
	publisher := application.NewPublisher(store, masto, cfg.Mastodon.Domain)

	if postOnce {
		return publisher.PostUpdate(ctx)
	}

	application.NewScheduler(time.Duration(cfg.IntervalMinutes)*time.Minute, publisher.PostUpdate).Run(ctx)
	return nil
}

func runAdd(ctx context.Context, cfg *domain.Config, store *persistence.Store) error {
	var tweets application.TweetFetcher
	if cfg.HasTwitter() {
		tweets = twitter.NewClient(twitter.Credentials{
			ConsumerKey:       cfg.Twitter.ConsumerKey,
			ConsumerSecret:    cfg.Twitter.ConsumerSecret,
			AccessToken:       cfg.Twitter.AccessToken,
			AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
		})
	}

	booru := danbooru.NewClient()
	if cfg.HasDanbooru() {
		booru = danbooru.NewAuthenticatedClient(cfg.Danbooru.Login, cfg.Danbooru.APIKey)
	}

	var illusts application.IllustFetcher
	if cfg.HasPixiv() {
		illusts = pixiv.NewClient(cfg.Pixiv.RefreshToken)
	}

	ingest := application.NewIngestService(
		store,
		application.NewCapabilities(cfg),
		tweets,
		booru,
		illusts,
		fetch.NewDownloader(imagesDir),
		application.NewPrompter(os.Stdin, os.Stdout),
	)
	return ingest.Run(ctx)
}
