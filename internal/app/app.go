// Package app assembles stores, publishers and post sources from config.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/cloudslate/cloudslate/internal/client"
	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/events"
	"github.com/cloudslate/cloudslate/internal/storage"
)

// Closer releases whatever OpenStore or OpenPublisher acquired.
type Closer func() error

func nopCloser() error { return nil }

// OpenStore builds the KV backend named by cfg.KVBackend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, Closer, error) {
	switch cfg.KVBackend {
	case "", "memory":
		logger.Warn("using in-memory KV store, data is lost on restart")
		return storage.NewMemoryStore(), nopCloser, nil

	case "file":
		st, err := storage.NewFileStore(cfg.KVDir)
		if err != nil {
			return nil, nil, err
		}
		return st, nopCloser, nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
				o.UsePathStyle = true
			}
		})
		return storage.NewS3Store(s3Client, cfg.S3Bucket), nopCloser, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		st, err := storage.NewSQLStore(ctx, storage.SQLOptions{DB: db, Placeholder: sq.Dollar, AutoMigrate: true})
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, db.Close, nil

	case "redis":
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
		st, err := storage.NewRedisStore(ctx, &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown KV backend %q", cfg.KVBackend)
}

// OpenPublisher connects to RabbitMQ when configured. Without a URL, or when
// the broker is unreachable, events are dropped.
func OpenPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, Closer) {
	if cfg.RabbitMQURL == "" {
		return events.NoopPublisher{}, nopCloser
	}
	pub, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("rabbitmq unavailable, post events disabled", "error", err)
		return events.NoopPublisher{}, nopCloser
	}
	return pub, pub.Close
}

// Client bundles the read and write sides used by consumers.
type Client struct {
	Resolver *client.Resolver
	Writer   *client.Writer
	// CMS is nil when no CMS project is configured.
	CMS *client.CMSSource
}

// NewClient wires sources in fallback order: CMS (when configured), the
// storage API, then local storage under cfg.Client.LocalDir.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	localStore, err := storage.NewFileStore(cfg.Client.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	local := client.NewLocalSource(localStore, logger)

	httpClient := &http.Client{Timeout: cfg.Client.FetchTimeout}
	api := client.NewAPISource(cfg.Client.APIURL, cfg.Client.APIToken, httpClient)
	cachedAPI := client.Cached(api, cfg.Client.APICacheTTL)

	var sources []client.Source
	out := &Client{}
	if cfg.Sanity.Enabled() {
		out.CMS = client.NewCMSSource(client.CMSConfig{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     cfg.Sanity.UseCDN,
		}, httpClient)
		sources = append(sources, client.Cached(out.CMS, cfg.Client.CMSCacheTTL))
	}
	sources = append(sources, cachedAPI, local)

	out.Resolver = client.NewResolver(client.ResolverOptions{Timeout: cfg.Client.FetchTimeout, Logger: logger}, sources...)
	out.Writer = client.NewWriter(api, local, logger)
	return out, nil
}
