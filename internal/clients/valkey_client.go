package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/sentiboard/config"
)

const VALKEY_ARCHIVED_KEY = "sentiboard:archived_posts"

type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

// NewValkeyClient connects and pings the server once.
func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig, ttl time.Duration) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.InitAddress},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return &ValkeyClient{Client: client, ttl: ttl}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// MarkProcessed records ids in the archived set and refreshes its expiry.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_ARCHIVED_KEY).Member(ids...).Build(),
		vc.Client.B().Expire().Key(VALKEY_ARCHIVED_KEY).Seconds(int64(vc.ttl.Seconds())).Build(),
	}
	for _, res := range vc.Client.DoMulti(ctx, completed...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to mark posts processed: %w", err)
		}
	}
	slog.Debug("[ValkeyClient] Marked posts processed", slog.Int("count", len(ids)))
	return nil
}

// IsPostProcessed reports whether id was archived within the TTL. Lookup
// errors are returned so callers can decide to archive anyway.
func (vc *ValkeyClient) IsPostProcessed(ctx context.Context, id string) (bool, error) {
	ok, err := vc.Client.Do(ctx, vc.Client.B().Sismember().Key(VALKEY_ARCHIVED_KEY).Member(id).Build()).AsBool()
	if err != nil {
		return false, fmt.Errorf("[ValkeyClient] failed to check post: %w", err)
	}
	return ok, nil
}
