package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is read with the ALLOYDB_ prefix. The password is resolved
// separately so it never sits in the environment of a deployed service.
type Config struct {
	Host         string `split_words:"true"`
	Port         int    `split_words:"true" default:"5432"`
	DatabaseName string `split_words:"true" default:"postgres"`
	User         string `split_words:"true" default:"postgres"`
	TableName    string `split_words:"true" default:"products"`
	SSLMode      string `envconfig:"SSLMODE" default:"disable"`
	MaxConns     int32  `split_words:"true" default:"4"`
}

func (c *Config) Enabled() bool {
	return c.Host != ""
}

// DSN builds a postgres URL with the user and password escaped.
func (c *Config) DSN(password string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.DatabaseName,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// New opens a pool and verifies it with a ping.
func (c *Config) New(ctx context.Context, password string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DSN(password))
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if c.MaxConns > 0 {
		poolCfg.MaxConns = c.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
