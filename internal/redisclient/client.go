package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"comanda-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = redis.Nil

type Client struct {
	rdb        *redis.Client
	productTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, productTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, productTTL: productTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

// GetProduct retrieves a cached product snapshot. Returns ErrCacheMiss
// when the product is not cached.
func (c *Client) GetProduct(ctx context.Context, productID int64) (models.ProductSnapshot, error) {
	var product models.ProductSnapshot

	raw, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		return product, err
	}
	if err := json.Unmarshal(raw, &product); err != nil {
		return product, fmt.Errorf("corrupt cached product %d: %w", productID, err)
	}
	return product, nil
}

// SetProduct caches a product snapshot with the configured TTL.
func (c *Client) SetProduct(ctx context.Context, product models.ProductSnapshot) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ProductID), raw, c.productTTL).Err()
}

// InvalidateProduct drops a product from the cache (catalog edit hook).
func (c *Client) InvalidateProduct(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}

const occupancyKey = "tables:occupancy"

// SetTableOccupancy mirrors a table's occupancy onto the live board the
// dashboard grid polls. Best-effort; the engine remains authoritative.
func (c *Client) SetTableOccupancy(ctx context.Context, tableNumber int, occupancy models.TableOccupancy) error {
	return c.rdb.HSet(ctx, occupancyKey, fmt.Sprintf("%d", tableNumber), string(occupancy)).Err()
}

// GetOccupancyBoard returns the full table occupancy board.
func (c *Client) GetOccupancyBoard(ctx context.Context) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, occupancyKey).Result()
}

func kitchenQueueKey(status models.OrderStatus) string {
	return fmt.Sprintf("kitchen:queue:%s", status)
}

// PushKitchenOrder places an order on the queue for its current status
// and removes it from every other status queue. Score is the submission
// time so displays show oldest first.
func (c *Client) PushKitchenOrder(ctx context.Context, orderID int64, status models.OrderStatus, submittedAt time.Time) error {
	member := fmt.Sprintf("%d", orderID)

	pipe := c.rdb.Pipeline()
	for _, s := range []models.OrderStatus{
		models.StatusReceived, models.StatusPreparing, models.StatusReady, models.StatusDelivered,
	} {
		if s == status {
			pipe.ZAdd(ctx, kitchenQueueKey(s), &redis.Z{
				Score:  float64(submittedAt.UnixMilli()),
				Member: member,
			})
		} else {
			pipe.ZRem(ctx, kitchenQueueKey(s), member)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveKitchenOrder drops an order from all kitchen queues (table closed).
func (c *Client) RemoveKitchenOrder(ctx context.Context, orderID int64) error {
	member := fmt.Sprintf("%d", orderID)

	pipe := c.rdb.Pipeline()
	for _, s := range []models.OrderStatus{
		models.StatusReceived, models.StatusPreparing, models.StatusReady, models.StatusDelivered,
	} {
		pipe.ZRem(ctx, kitchenQueueKey(s), member)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// KitchenQueue lists order IDs currently in the given status, oldest first.
func (c *Client) KitchenQueue(ctx context.Context, status models.OrderStatus) ([]string, error) {
	return c.rdb.ZRange(ctx, kitchenQueueKey(status), 0, -1).Result()
}
