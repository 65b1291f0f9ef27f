package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sessionshell/internal/common"
	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/storage/badger"
	"github.com/ternarybob/sessionshell/internal/storage/file"
)

// NewStore creates the durable store selected by config.Storage.Type
func NewStore(logger arbor.ILogger, config *common.Config) (interfaces.Store, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(config.Storage.Type) {
	case "", "file":
		logger.Info().Str("dir", dataDir).Msg("Using file storage")
		return file.NewStore(dataDir, logger)

	case "badger":
		badgerConfig := config.Storage.Badger
		if badgerConfig.Path == "" {
			badgerConfig.Path = filepath.Join(dataDir, "db")
		}
		logger.Info().Str("path", badgerConfig.Path).Msg("Using badger storage")

		db, err := badger.NewBadgerDB(logger, &badgerConfig)
		if err != nil {
			return nil, err
		}
		return badger.NewStore(db, logger), nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}
}
