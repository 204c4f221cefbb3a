package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the rendered list of active flights. It is a read-through
// cache only; the ledger stays the source of truth.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: time.Duration(cfg.FlightsCacheTTL) * time.Second,
	}
}

// activeFlightsEntry is stored as JSON. Version is the ledger flight version
// the list was read at.
type activeFlightsEntry struct {
	Version uint64          `json:"version"`
	Flights []domain.Flight `json:"flights"`
}

// GetActiveFlights returns nil without error on a cache miss. An entry written
// for another flight version counts as a miss.
func (c *RedisCache) GetActiveFlights(ctx context.Context, today time.Time, version uint64) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, activeFlightsKey(today)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeActiveFlights(data, version)
}

func (c *RedisCache) SetActiveFlights(ctx context.Context, today time.Time, version uint64, flights []domain.Flight) error {
	payload, err := json.Marshal(activeFlightsEntry{Version: version, Flights: flights})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeFlightsKey(today), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateActiveFlights(ctx context.Context, today time.Time) error {
	return c.client.Del(ctx, activeFlightsKey(today)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Keys are scoped by reference date so ledgers running with different
// "today" values never share an entry.
func activeFlightsKey(today time.Time) string {
	return fmt.Sprintf("cache:flights:active:%s", today.Format(domain.DateLayout))
}

func decodeActiveFlights(data []byte, version uint64) ([]domain.Flight, error) {
	var entry activeFlightsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if entry.Version != version || entry.Flights == nil {
		return nil, nil
	}
	return entry.Flights, nil
}
