// Package liveexport implements the companion tool that exports a
// live instance's keyspace as one top-level JSON object keyed directly
// by database key, no wrapper, like the snapshot decoder's Simple
// output. Unlike that output, sorted sets are written as member->score
// objects and streams as [entry_id, fields] pairs.
package liveexport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Config describes how to reach the source instance and how fast to
// scan it.
type Config struct {
	Addr      string
	Password  string
	TLS       bool
	ScanCount int64
	// ScanRate caps SCAN iterations per second; zero means unlimited.
	ScanRate float64
}

// Exporter walks a live instance's keyspace key by key, serializing
// each value into the direct JSON shape.
type Exporter struct {
	client  *redis.Client
	limiter *rate.Limiter
	cfg     Config
}

// New connects to cfg.Addr. The caller must call Close when done.
func New(cfg Config) (*Exporter, error) {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password}
	if cfg.TLS {
		opts.TLSConfig = tlsConfigFor(cfg.Addr)
	}
	client := redis.NewClient(opts)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.ScanRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ScanRate), 1)
	}

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("liveexport: connect to %s: %w", cfg.Addr, err)
	}

	return &Exporter{client: client, limiter: limiter, cfg: cfg}, nil
}

// tlsConfigFor builds the TLS config for connecting to addr, setting
// ServerName to addr's host part so certificate verification checks
// the right name.
func tlsConfigFor(addr string) *tls.Config {
	serverName := addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		serverName = host
	}
	return &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
}

// Close releases the underlying connection pool.
func (e *Exporter) Close() error { return e.client.Close() }

// Export scans the whole keyspace and returns key -> serialized value,
// matching spec.md §6.3's companion export tool contract.
func (e *Exporter) Export(ctx context.Context) (map[string]interface{}, error) {
	count := e.cfg.ScanCount
	if count <= 0 {
		count = 100
	}

	out := make(map[string]interface{})
	var cursor uint64
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		keys, next, err := e.client.Scan(ctx, cursor, "", count).Result()
		if err != nil {
			return nil, fmt.Errorf("liveexport: scan: %w", err)
		}

		for _, key := range keys {
			val, err := e.serialize(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("liveexport: serialize %q: %w", key, err)
			}
			out[key] = val
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (e *Exporter) serialize(ctx context.Context, key string) (interface{}, error) {
	kind, err := e.client.Type(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "string":
		return e.client.Get(ctx, key).Result()

	case "hash":
		return e.client.HGetAll(ctx, key).Result()

	case "list":
		return e.client.LRange(ctx, key, 0, -1).Result()

	case "set":
		members, err := e.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		sort.Strings(members)
		return members, nil

	case "zset":
		withScores, err := e.client.ZRangeWithScores(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, err
		}
		out := make(map[string]float64, len(withScores))
		for _, z := range withScores {
			member, _ := z.Member.(string)
			out[member] = z.Score
		}
		return out, nil

	case "stream":
		entries, err := e.client.XRange(ctx, key, "-", "+").Result()
		if err != nil {
			return nil, err
		}
		pairs := make([][2]interface{}, 0, len(entries))
		for _, ent := range entries {
			pairs = append(pairs, [2]interface{}{ent.ID, ent.Values})
		}
		return pairs, nil

	default:
		size, err := e.client.MemoryUsage(ctx, key).Result()
		if err != nil {
			size = 0
		}
		return fmt.Sprintf("%s: (binary data, size %d bytes)", kind, size), nil
	}
}
