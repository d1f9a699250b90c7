package store

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// Build creates the directory backend described by cfg.
func Build(cfg config.DirectoryConfig) (core.Directory, error) {
	switch cfg.Type {
	case MemoryType, "":
		return NewMemoryDirectory(), nil
	case RedisType:
		var conf RedisConfig
		if err := decodeOptions(cfg.Options, &conf); err != nil {
			return nil, fmt.Errorf("decoding redis directory options: %w", err)
		}
		return NewRedisDirectory(conf)
	case ConsulType:
		var conf ConsulConfig
		if err := decodeOptions(cfg.Options, &conf); err != nil {
			return nil, fmt.Errorf("decoding consul directory options: %w", err)
		}
		return NewConsulDirectory(conf)
	default:
		return nil, fmt.Errorf("unknown directory type %q", cfg.Type)
	}
}

func decodeOptions(options map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      result,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	return decoder.Decode(options)
}
