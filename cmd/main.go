package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutribalance/config"
	"nutribalance/controllers"
	"nutribalance/logger"
	"nutribalance/routes"
	"nutribalance/services"
	"nutribalance/utils"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const serviceName = "nutribalance"

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Nutrition tracking and molecular balance API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c
			logger.Init(serviceName, cfg.LogLevel, cfg.IsDevelopment())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("database migrated")
			return nil
		},
	})

	var (
		tokenUser  string
		tokenEmail string
		tokenTTL   time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.IsProduction() {
				return errors.New("refusing to mint tokens in production")
			}
			if tokenUser == "" {
				tokenUser = uuid.NewString()
			}
			tok, err := utils.GenerateJWT(cfg.JWTSecret, tokenUser, tokenEmail, tokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id placed in the sub claim (random when empty)")
	tokenCmd.Flags().StringVarP(&tokenEmail, "email", "e", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	ctl, err := buildControllers(ctx, db)
	if err != nil {
		return err
	}

	router := routes.SetupRouter(routes.Options{
		JWTSecret:       cfg.JWTSecret,
		FrontendURL:     cfg.FrontendURL,
		RateLimitWindow: cfg.RateLimitWindow(),
		RateLimitMax:    cfg.RateLimitMaxRequests,
		Dev:             !cfg.IsProduction(),
	}, ctl)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("environment", cfg.Environment).
			Int("port", cfg.Port).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// buildControllers wires every service. AWS backed channels stay nil
// interfaces when AWS is not configured so services can skip them.
func buildControllers(ctx context.Context, db *gorm.DB) (routes.Controllers, error) {
	var (
		photos  services.PhotoUploader
		mailer  services.AlertMailer
		snsAPI  services.SNSAPI
		rekServ *services.RekognitionService
	)

	if cfg.AWSConfigured() {
		awsCfg, err := config.LoadAWS(ctx, cfg)
		if err != nil {
			return routes.Controllers{}, err
		}
		if cfg.S3Bucket != "" {
			photos = utils.NewImageUploader(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.CloudFrontURL)
		}
		if cfg.SESEmail != "" {
			mailer = utils.NewMailer(ses.NewFromConfig(awsCfg), cfg.SESEmail)
		}
		snsAPI = sns.NewFromConfig(awsCfg)
		rekServ = services.NewRekognitionService(rekognition.NewFromConfig(awsCfg))
	} else {
		log.Warn().Msg("AWS_REGION not set: photo upload, recognition, push and email alerts are disabled")
	}

	hub := services.NewRealtimeHub()
	push := services.NewPushService(db, snsAPI, cfg.SNSPlatformARN)
	bus := services.NewAlertBus(db, hub, push, mailer)

	balances := services.NewBalanceService(db, bus)
	meals := services.NewMealService(db, photos, balances)
	profiles := services.NewProfileService(db)
	foods := services.NewFoodService(
		services.NewEdamamService(cfg.EdamamBaseURL, cfg.EdamamAppID, cfg.EdamamAppKey),
		rekServ,
	)
	recs := services.NewRecommendationService(db, cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.FrontendURL)

	return routes.Controllers{
		Health:         controllers.NewHealthController(cfg.Environment, cfg.Version),
		Profile:        controllers.NewProfileController(profiles),
		Meal:           controllers.NewMealController(meals, balances),
		Food:           controllers.NewFoodController(foods),
		Biomarker:      controllers.NewBiomarkerController(services.NewBiomarkerService(db)),
		Recommendation: controllers.NewRecommendationController(recs),
		Notification:   controllers.NewNotificationController(bus),
		Device:         controllers.NewDeviceController(push),
		Realtime:       controllers.NewRealtimeController(hub),
		Dev:            controllers.NewDevController(bus),
	}, nil
}
