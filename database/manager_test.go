/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widget"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

func memoryConfig() *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.HealthCheckInterval = 0
	return cfg
}

func openMemory(t *testing.T, models ...SQLModel) AbstractDatabaseManager {
	t.Helper()
	m, err := Open(context.Background(), memoryConfig(), nil, models...)
	if err != nil {
		t.Fatalf("open memory database: %v", err)
	}
	t.Cleanup(func() { _ = m.Disconnect() })
	return m
}

func TestOpenMemoryDatabase(t *testing.T) {
	m := openMemory(t, NewModelAdapter((*widget)(nil), 1))
	ctx := context.Background()

	if err := m.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got := m.GetStats().MaxOpenConns; got != 1 {
		t.Fatalf("memory pool max open conns = %d, want 1", got)
	}

	status := m.HealthCheck(ctx)
	if !status.Healthy || !status.Connected {
		t.Fatalf("unexpected health status: %+v", status)
	}

	// the table must be visible through every query on the pool
	for i := 0; i < 3; i++ {
		n, err := m.GetDB().NewSelect().Model((*widget)(nil)).Count(ctx)
		if err != nil {
			t.Fatalf("count widgets: %v", err)
		}
		if n != 0 {
			t.Fatalf("count = %d, want 0", n)
		}
	}
}

func TestMemoryDatabasesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t, NewModelAdapter((*widget)(nil), 1))
	b := openMemory(t, NewModelAdapter((*widget)(nil), 1))

	if _, err := a.GetDB().NewInsert().Model(&widget{ID: 1, Name: "a"}).Exec(ctx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	n, err := b.GetDB().NewSelect().Model((*widget)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("second database sees %d rows from the first", n)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	m := openMemory(t, NewModelAdapter((*widget)(nil), 1))
	ctx := context.Background()

	if err := m.RunMigrations(ctx); err != nil {
		t.Fatalf("second migration run: %v", err)
	}

	applied, err := NewMigrationManager(m.GetDB(), nil, nil).GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("applied migrations: %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "001" {
		t.Fatalf("applied = %+v, want only 001", applied)
	}
}

func TestDisconnect(t *testing.T) {
	m := NewDatabaseManager(&memoryConfig().ConnectionConfig)
	ctx := context.Background()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := m.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := m.Ping(ctx); err == nil {
		t.Fatal("ping after disconnect should fail")
	}
	if status := m.HealthCheck(ctx); status.Healthy {
		t.Fatal("health check after disconnect should be unhealthy")
	}
	if err := m.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
}

func TestOpenRejectsUnsupportedType(t *testing.T) {
	cfg := memoryConfig()
	cfg.ConnectionConfig.Type = "oracle"
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestMemoryDisablesReconnect(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.EnableReconnect = true
	NewDatabaseManager(cfg)
	if cfg.EnableReconnect {
		t.Fatal("reconnect must be off for in-memory sqlite")
	}
}

func TestIsMemory(t *testing.T) {
	cases := []struct {
		cfg  ConnectionConfig
		want bool
	}{
		{ConnectionConfig{Type: "sqlite", DBName: MemoryDBName}, true},
		{ConnectionConfig{Type: "sqlite3"}, true},
		{ConnectionConfig{Type: "sqlite", DBName: "items"}, false},
		{ConnectionConfig{Type: "postgres", DBName: MemoryDBName}, false},
	}
	for _, c := range cases {
		if got := c.cfg.IsMemory(); got != c.want {
			t.Errorf("IsMemory(%+v) = %v, want %v", c.cfg, got, c.want)
		}
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")

	cfg := DefaultConnectionConfig()
	OverrideFromEnv(cfg)

	if cfg.Type != "postgres" || cfg.Host != "db.internal" || cfg.Port != 6543 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.MaxOpenConns != 100 {
		t.Fatalf("invalid number should be ignored, got %d", cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime.Seconds() != 90 {
		t.Fatalf("conn max lifetime = %v", cfg.ConnMaxLifetime)
	}
}
