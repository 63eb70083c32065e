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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		wantIs bool
		want   SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"plain", errors.New("boom"), false, UnknownErr},
		{"no rows", fmt.Errorf("get: %w", sql.ErrNoRows), true, NoRowsErr},
		{"sqlite unique", errors.New("UNIQUE constraint failed: item.id"), true, DuplicateKeyErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: item.name"), true, NotNullViolationErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: item (1)"), true, NoTableErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, DuplicateKeyErr},
		{"mysql unknown", &mysql.MySQLError{Number: 9999}, true, UnknownErr},
		{"pgx duplicate", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true, DuplicateKeyErr},
		{"pq not null", &pq.Error{Code: "23502"}, true, NotNullViolationErr},
		{"sqlstate text", errors.New("ERROR: relation exists (SQLSTATE 42P07)"), true, ExistTableErr},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is, kind := IsSqlError(c.err)
			if is != c.wantIs || kind != c.want {
				t.Fatalf("IsSqlError(%v) = (%v, %s), want (%v, %s)", c.err, is, kind, c.wantIs, c.want)
			}
		})
	}
}

func TestDuplicateKeyFromSqlite(t *testing.T) {
	m := openMemory(t, NewModelAdapter((*widget)(nil), 1))
	ctx := context.Background()
	db := m.GetDB()

	if _, err := db.NewInsert().Model(&widget{ID: 7, Name: "first"}).Exec(ctx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.NewInsert().Model(&widget{ID: 7, Name: "second"}).Exec(ctx)
	if err == nil {
		t.Fatal("expected primary key violation")
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("driver error not classified as duplicate: %v", err)
	}
}
