package jobs

import (
	"context"
	"errors"
	"fmt"
	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/pricelist/internal/domain/dto"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/redis/go-redis/v9"
	"time"
)

const keyPrefix = "pricelist:upload:job:"

func key(id string) string {
	return keyPrefix + id
}

type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect разбирает url, создает клиента и ждет ответа на PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	err = backoff.Retry(
		func() error { return client.Ping(ctx).Err() },
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

func (s *Redis) Save(ctx context.Context, status *dto.JobStatus) error {
	payload, err := encode(status)
	if err != nil {
		return err
	}
	if err = s.client.Set(ctx, key(status.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, id string) (*dto.JobStatus, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, constants.ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}
	return decode(payload)
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}
	return nil
}

func encode(status *dto.JobStatus) ([]byte, error) {
	payload, err := sonic.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("sonic.Marshal: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (*dto.JobStatus, error) {
	var status dto.JobStatus
	if err := sonic.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("sonic.Unmarshal: %w", err)
	}
	return &status, nil
}
