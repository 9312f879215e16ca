// Package kvdb opens the key-value database behind the kvstore ledger.
package kvdb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/database/meterdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EngineMemory  = "memory"
	EngineLevelDB = "leveldb"
)

// Open returns a metered database for engine. path is ignored for the
// memory engine.
func Open(engine string, path string, registerer prometheus.Registerer, logger *slog.Logger) (database.Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	var (
		base database.Database
		err  error
	)
	switch engine {
	case EngineMemory:
		base = memdb.New()
	case EngineLevelDB:
		if err := os.MkdirAll(filepath.Clean(path), 0o750); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
		base, err = leveldb.New(path, nil, logging.NoLog{}, "pollledger_leveldb", registerer)
		if err != nil {
			return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unknown kv engine %q", engine)
	}

	metered, err := meterdb.New("pollledger_kvdb", registerer, base)
	if err != nil {
		_ = base.Close()
		return nil, fmt.Errorf("meter kv database: %w", err)
	}
	logger.Info("kv database opened",
		"event", "kvdb_opened",
		"module", "internal/platform/kvdb",
		"layer", "platform",
		"engine", engine,
		"path", path,
	)
	return metered, nil
}
