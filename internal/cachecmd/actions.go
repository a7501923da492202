// Package cachecmd implements the termscan cache maintenance commands.
package cachecmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/termscan/models"
	"github.com/dtnitsch/termscan/pkg/cache"
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(c *cli.Context) (*cache.Store, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache: %w", err)
	}
	return store, nil
}

// EvictAction removes every cache entry past the TTL.
func EvictAction(c *cli.Context) error {
	logger := newLogger(c)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.EvictExpired()
	if err != nil {
		return err
	}
	logger.Info("eviction complete", "evicted", n, "db", store.Path())

	out, _ := json.Marshal(map[string]int64{"evicted": n})
	fmt.Println(string(out))
	return nil
}

// StatsAction reports entry counts.
func StatsAction(c *cli.Context) error {
	logger := newLogger(c)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	total, expired, err := store.Stats()
	if err != nil {
		return err
	}
	logger.Info("cache stats", "total", total, "expired", expired, "db", store.Path())

	out, _ := json.Marshal(map[string]int64{"total": total, "expired": expired})
	fmt.Println(string(out))
	return nil
}
