package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	consulapi "github.com/hashicorp/consul/api"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const ConsulType = "consul"

const defaultConsulPrefix = "noona-vault/"

var _ core.Directory = (*ConsulDirectory)(nil)

type ConsulConfig struct {
	// Address of the Consul agent, defaults to the consul client default (127.0.0.1:8500).
	Address string `mapstructure:"address"`

	// Token is an optional ACL token.
	Token string `mapstructure:"token"`

	// Prefix is prepended to every key. Defaults to "noona-vault/".
	Prefix string `mapstructure:"prefix"`
}

// ConsulDirectory stores directory entries in the Consul KV store.
type ConsulDirectory struct {
	cli    *consulapi.Client
	prefix string
}

func NewConsulDirectory(cfg ConsulConfig) (*ConsulDirectory, error) {
	conf := consulapi.DefaultConfig()
	if cfg.Address != "" {
		conf.Address = cfg.Address
	}
	if cfg.Token != "" {
		conf.Token = cfg.Token
	}
	cli, err := consulapi.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultConsulPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ConsulDirectory{cli: cli, prefix: prefix}, nil
}

func (c *ConsulDirectory) Name() string {
	return ConsulType
}

func (c *ConsulDirectory) key(key string) string {
	return c.prefix + key
}

func (c *ConsulDirectory) Get(ctx context.Context, key string) (string, error) {
	q := (&consulapi.QueryOptions{}).WithContext(ctx)
	kv, _, err := c.cli.KV().Get(c.key(key), q)
	if err != nil {
		return "", unavailable(ConsulType, err)
	}
	if kv == nil {
		return "", core.ErrNotFound
	}
	return string(kv.Value), nil
}

func (c *ConsulDirectory) Set(ctx context.Context, key, value string) error {
	w := (&consulapi.WriteOptions{}).WithContext(ctx)
	_, err := c.cli.KV().Put(&consulapi.KVPair{Key: c.key(key), Value: []byte(value)}, w)
	if err != nil {
		return c.writeError(err)
	}
	return nil
}

// Delete looks the key up first, since Consul does not report whether a
// deleted key existed.
func (c *ConsulDirectory) Delete(ctx context.Context, key string) (bool, error) {
	if _, err := c.Get(ctx, key); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	w := (&consulapi.WriteOptions{}).WithContext(ctx)
	if _, err := c.cli.KV().Delete(c.key(key), w); err != nil {
		return false, c.writeError(err)
	}
	return true, nil
}

func (c *ConsulDirectory) Ping(ctx context.Context) error {
	q := (&consulapi.QueryOptions{}).WithContext(ctx)
	if _, err := c.cli.Status().LeaderWithQueryOptions(q); err != nil {
		return unavailable(ConsulType, err)
	}
	return nil
}

func (c *ConsulDirectory) Close() error {
	return nil
}

func (c *ConsulDirectory) writeError(err error) error {
	if isConnectivityError(err) {
		return unavailable(ConsulType, err)
	}
	return fmt.Errorf("%s: %w", ConsulType, err)
}
