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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "itemsvc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if !cfg.Database.ConnectionConfig.IsMemory() || !cfg.Database.SeedOnStartup || !cfg.Database.MigrateOnStartup {
		t.Fatalf("database defaults = %+v", cfg.Database)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9090"
  base_url: "https://items.example.org"
  shutdown_timeout: 3s
log:
  level: debug
  format: json
database:
  seed_on_startup: false
  connection:
    type: sqlite
    dbname: ":memory:"
    slow_query_time: 500ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.BaseURL != "https://items.example.org" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("unset read timeout lost its default: %v", cfg.Server.ReadTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if cfg.Database.SeedOnStartup {
		t.Fatal("seed_on_startup not applied")
	}
	if cfg.Database.ConnectionConfig.SlowQueryTime != 500*time.Millisecond {
		t.Fatalf("slow query time = %v", cfg.Database.ConnectionConfig.SlowQueryTime)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_SEED_ON_STARTUP", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" || cfg.Log.Level != "warn" || cfg.Database.SeedOnStartup {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "server: [",
		"bad format":   "log:\n  format: xml\n",
		"bad base url": "server:\n  base_url: items.example.org\n",
		"bad db type":  "database:\n  connection:\n    type: oracle\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
