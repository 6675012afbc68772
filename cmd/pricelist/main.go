package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/ougirez/pricelist/internal/api"
	"github.com/ougirez/pricelist/internal/pkg/archive"
	"github.com/ougirez/pricelist/internal/pkg/config"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/jobs"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/pkg/store"
	"github.com/ougirez/pricelist/internal/pkg/store/xpgx"
	"github.com/ougirez/pricelist/internal/service/auth"
	"github.com/ougirez/pricelist/internal/service/pricelist"
	"github.com/ougirez/pricelist/internal/service/uploader"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "config.Load: %s\n", err)
		os.Exit(1)
	}
	if err := logger.Init(viper.GetString(constants.ViperLogLevel), viper.GetBool(constants.ViperLogDevelopment)); err != nil {
		fmt.Fprintf(os.Stderr, "logger.Init: %s\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := xpgx.New(ctx, viper.GetString(constants.ViperPostgresDSN))
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("xpgx.New: %w", err))
	}
	defer pool.Close()

	jobStore, err := newJobStore(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	archiver, err := newArchiver(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	secret := viper.GetString(constants.ViperSecretKey)
	if secret == "" {
		logger.Warnf(ctx, "auth.secret is empty, token signatures are not verified")
	}
	authService := auth.NewService(secret)
	pricelistService := pricelist.NewService(
		store.NewStore(pool),
		uploader.ConfigFromViper(),
		jobStore,
		archiver,
		authService,
	)
	defer pricelistService.Close()

	if staleAfter := viper.GetDuration(constants.ViperUploadStaleAfter); staleAfter > 0 {
		go pricelistService.RunSweeper(ctx, staleAfter/4, staleAfter)
	}

	apiService, err := api.NewAPIService(api.Options{
		AllowOrigins: viper.GetStringSlice(constants.ViperServerAllowOrigins),
		MaxFileSize:  viper.GetString(constants.ViperServerMaxFileSize),
	}, pricelistService, authService)
	if err != nil {
		logger.Fatal(ctx, fmt.Errorf("api.NewAPIService: %w", err))
	}

	go apiService.Serve(viper.GetString(constants.ViperServerAddr))
	logger.Infof(ctx, "listening on %s", viper.GetString(constants.ViperServerAddr))

	<-ctx.Done()
	logger.Infof(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = apiService.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "apiService.Shutdown: %s", err.Error())
	}
}

func newJobStore(ctx context.Context) (jobs.Store, error) {
	ttl := viper.GetDuration(constants.ViperJobsTTL)

	url := viper.GetString(constants.ViperRedisURL)
	if url == "" {
		logger.Warnf(ctx, "redis.url is empty, job status is kept in memory")
		return jobs.NewMemory(ttl), nil
	}

	client, err := jobs.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("jobs.Connect: %w", err)
	}
	return jobs.NewRedis(client, ttl), nil
}

func newArchiver(ctx context.Context) (archive.Archiver, error) {
	bucket := viper.GetString(constants.ViperArchiveBucket)
	if bucket == "" {
		return archive.Nop{}, nil
	}

	archiver, err := archive.New(ctx, archive.Options{
		Bucket:    bucket,
		Region:    viper.GetString(constants.ViperArchiveRegion),
		Endpoint:  viper.GetString(constants.ViperArchiveEndpoint),
		AccessKey: viper.GetString(constants.ViperArchiveAccessKey),
		SecretKey: viper.GetString(constants.ViperArchiveSecretKey),
	})
	if err != nil {
		return nil, fmt.Errorf("archive.New: %w", err)
	}
	return archiver, nil
}
