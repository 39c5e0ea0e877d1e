package main

import (
	"context"
	"fmt"

	"distress-server/internal/config"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/repositories/memory"
	"distress-server/internal/repositories/mongodb"
	"distress-server/pkg/cache"
	"distress-server/pkg/database"
	"distress-server/pkg/email"
	"distress-server/pkg/logger"
	"distress-server/pkg/maps"
	"distress-server/pkg/pubsub"
	"distress-server/pkg/sms"
	"distress-server/pkg/storage"
	"distress-server/routes"
)

// closers collects resources to release on shutdown, in reverse order of creation.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) closeAll(log *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.WithError(err).Warn("Failed to release resource")
		}
	}
}

type repositories struct {
	users  interfaces.UserRepository
	alerts interfaces.DistressRepository
	// ping is nil for the in-memory driver.
	ping routes.HealthCheck
}

func newRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger, cleanup *closers) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("Using in-memory store; data is lost on restart")
		return &repositories{
			users:  memory.NewUserRepository(),
			alerts: memory.NewDistressRepository(cfg.Distress.HistoryLimit),
		}, nil
	}

	db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		AppName:        cfg.App.Name,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	cleanup.add(db.Close)

	if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.WithField("database", cfg.Database.Database).Info("Connected to MongoDB")
	return &repositories{
		users:  mongodb.NewUserRepository(db.Database),
		alerts: mongodb.NewDistressRepository(db.Database, cfg.Distress.HistoryLimit),
		ping:   db.Ping,
	}, nil
}

func newRedis(ctx context.Context, cfg *config.RedisConfig, appName string, log *logger.Logger, cleanup *closers) *cache.RedisCache {
	if !cfg.Enabled() {
		return nil
	}

	redisCache, err := cache.NewRedisCache(ctx, &cache.Config{
		URL:         cfg.URL,
		ClientName:  appName,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		OpTimeout:   cfg.OpTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, rate limits stay in process memory")
		return nil
	}
	cleanup.add(redisCache.Close)
	return redisCache
}

func newSMSProvider(ctx context.Context, cfg *config.SMSConfig, log *logger.Logger) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "twilio":
		if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
			return nil, fmt.Errorf("twilio SMS provider requires TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN")
		}
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	case "sns":
		return sms.NewAWSSNSProvider(ctx, cfg.AWS.Region, cfg.AWS.SenderID)
	case "log":
		return sms.NewLogProvider(log), nil
	}
	return nil, fmt.Errorf("unknown SMS provider %q", cfg.Provider)
}

func newEmailProvider(cfg *config.SMTPConfig, log *logger.Logger) email.EmailProvider {
	if !cfg.Enabled() {
		return email.NewLogProvider(log)
	}
	return email.NewSMTPProvider(email.SMTPConfig{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.Username,
		Password:  cfg.Password,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		TLS:       cfg.TLS,
		Timeout:   cfg.Timeout,
	})
}

func newStorage(ctx context.Context, cfg *config.StorageConfig, cleanup *closers) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "local":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "s3":
		return storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcp":
		store, err := storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
		if err != nil {
			return nil, err
		}
		cleanup.add(store.Close)
		return store, nil
	case "firebase":
		return storage.NewFirebaseStorage(ctx, cfg.Firebase.ProjectID, cfg.Firebase.Bucket, cfg.Firebase.CredentialsFile)
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}

func newPublisher(ctx context.Context, cfg *config.MQTTConfig, log *logger.Logger, cleanup *closers) (pubsub.Publisher, error) {
	var (
		publisher pubsub.Publisher
		err       error
	)

	switch cfg.Provider {
	case "mqtt":
		publisher, err = pubsub.NewMQTTPublisher(pubsub.MQTTConfig{
			BrokerURL:      cfg.BrokerURL,
			ClientID:       cfg.ClientID,
			Username:       cfg.Username,
			Password:       cfg.Key,
			QoS:            cfg.QoS,
			ConnectTimeout: cfg.ConnectTimeout,
			PublishTimeout: cfg.PublishTimeout,
		})
	case "sns":
		publisher, err = pubsub.NewSNSPublisher(ctx, cfg.SNSRegion, cfg.SNSTopicARN)
	case "log":
		publisher = pubsub.NewLogPublisher(log)
	default:
		err = fmt.Errorf("unknown drone publisher %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	cleanup.add(publisher.Close)
	return publisher, nil
}

// newGeocoder returns nil when no API key is configured; notifications then omit the address line.
func newGeocoder(cfg *config.MapsConfig, log *logger.Logger) maps.Geocoder {
	if !cfg.Enabled() {
		return nil
	}

	provider, err := maps.NewGoogleMapsProvider(cfg.GoogleMapsAPIKey)
	if err != nil {
		log.WithError(err).Warn("Reverse geocoding disabled")
		return nil
	}
	return provider
}
