//go:build integration_test || all_tests

// Package dbtest starts throwaway postgres and redis containers for
// integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/Motzart/exercises-app/internal/db"
)

const DBName = "practice_test"

type Env struct {
	Pool         *pgxpool.Pool
	PostgresPort string
	RedisPort    string

	dockerPool *dockertest.Pool
	teardown   []func()
}

// Start runs postgres (schema applied) and, when withRedis is set, redis.
func Start(ctx context.Context, withRedis bool) (_ *Env, err error) {
	env := &Env{}
	defer func() {
		if err != nil {
			env.Close()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	env.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("new dockertest pool: %w", err)
	}
	if err := env.dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("ping docker: %w", err)
	}

	if withRedis {
		if env.RedisPort, err = env.redisSetup(); err != nil {
			return nil, err
		}
	}

	if env.PostgresPort, err = env.postgresSetup(); err != nil {
		return nil, err
	}

	env.Pool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: env.PostgresPort,
		DBName: DBName,
	})
	if err != nil {
		return nil, err
	}
	env.teardown = append(env.teardown, env.Pool.Close)

	if err := db.Migrate(ctx, env.Pool); err != nil {
		return nil, err
	}

	return env, nil
}

func (e *Env) Close() {
	for i := len(e.teardown) - 1; i >= 0; i-- {
		e.teardown[i]()
	}
	e.teardown = nil
}

func (e *Env) redisSetup() (string, error) {
	redisResource, err := e.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}
	e.teardown = append(e.teardown, func() {
		if err := redisResource.Close(); err != nil {
			log.Printf("redis teardown: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (e *Env) postgresSetup() (string, error) {
	pgResource, err := e.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + DBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("run postgres: %w", err)
	}
	e.teardown = append(e.teardown, func() {
		if err := pgResource.Close(); err != nil {
			log.Printf("postgres teardown: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/%s?sslmode=disable", pgPort, DBName)
	if err := e.dockerPool.Retry(func() error {
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return sqlDB.Ping()
	}); err != nil {
		return "", fmt.Errorf("wait for postgres: %w", err)
	}

	return pgPort, nil
}
