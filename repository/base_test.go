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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/tomoncle/itemsvc/database"
	"github.com/uptrace/bun"
)

type note struct {
	bun.BaseModel `bun:"table:note"`

	ID   int64  `bun:"id,pk"`
	Text string `bun:"text,notnull"`
}

func newNoteRepo(t *testing.T) Repository[note] {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.HealthCheckInterval = 0
	m, err := database.Open(context.Background(), cfg, nil, database.NewModelAdapter((*note)(nil), 1))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = m.Disconnect() })
	return NewRepository[note](m.GetDB())
}

func TestCreateAndGet(t *testing.T) {
	repo := newNoteRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &note{ID: 2, Text: "b"}, &note{ID: 1, Text: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetOne(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "a" {
		t.Fatalf("text = %q, want a", got.Text)
	}

	if _, err := repo.GetOne(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing row error = %v, want sql.ErrNoRows", err)
	}

	all, err := repo.GetAll(ctx, "id ASC")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("unexpected order: %+v", all)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}
}

func TestGetAllEmptyIsNotNil(t *testing.T) {
	repo := newNoteRepo(t)
	all, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", all)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	repo := newNoteRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := repo.CreateWithTx(ctx, tx, &note{ID: 1, Text: "a"}); err != nil {
			return err
		}
		n, err := repo.CountWithTx(ctx, tx)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("count inside tx = %d, want 1", n)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx error = %v, want boom", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rolled back insert is visible: count = %d", n)
	}
}

func TestCreateNothing(t *testing.T) {
	repo := newNoteRepo(t)
	if err := repo.Create(context.Background()); err != nil {
		t.Fatalf("empty create: %v", err)
	}
}
