package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisReader reads cart snapshots stored by the cart subsystem as JSON
// blobs keyed cart:user:<id>.
type RedisReader struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisReader creates a Redis-backed cart reader.
func NewRedisReader(client *redis.Client, logger zerolog.Logger) *RedisReader {
	return &RedisReader{
		client: client,
		logger: logger.With().Str("component", "cart_reader").Logger(),
	}
}

func cartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// GetCartByUser returns the user's current cart contents.
func (r *RedisReader) GetCartByUser(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug().Str("user_id", userID.String()).Msg("cart not found")
		return nil, model.NotFoundf("Cart not found for user %s", userID)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	snapshot, err := decodeCart(data)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to decode cart")
		return nil, err
	}
	return snapshot, nil
}

func decodeCart(data []byte) (*Cart, error) {
	var snapshot Cart
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &snapshot, nil
}
