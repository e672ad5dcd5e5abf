package redis

import (
	"context"
	"fmt"

	"github.com/aniladanir/retry"
	"github.com/go-redis/redis/v8"
)

// Connect creates a redis client and waits until the instance answers a ping
func Connect(ctx context.Context, addr string, maxRetry int) (*redis.Client, error) {
	retrier, err := retry.New(retry.WithMaxAttemps(maxRetry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize retrier: %w", err)
	}

	rClient := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// retry ping
	var pingErr error
	ping := func(attempt int) (terminate bool) {
		pingErr = rClient.Ping(ctx).Err()
		return pingErr == nil
	}
	if ok := <-retrier.Retry(ctx, ping, true); !ok {
		_ = rClient.Close()
		if pingErr == nil {
			pingErr = ctx.Err()
		}
		return nil, fmt.Errorf("failed to ping redis instance: %w", pingErr)
	}

	return rClient, nil
}

func Close(client *redis.Client) error {
	return client.Close()
}
