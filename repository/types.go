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

	"github.com/uptrace/bun"
)

// TxFunc runs inside a transaction opened by RunInTx.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// CrudRepository defines the read and insert operations for an entity type.
type CrudRepository[T any] interface {
	// GetOne returns sql.ErrNoRows (possibly wrapped) when nothing matches.
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context, orders ...string) ([]*T, error)

	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, entity ...*T) error
}

// TransactionRepository defines operations executed within a transaction.
type TransactionRepository[T any] interface {
	CountWithTx(ctx context.Context, tx bun.Tx) (int, error)
	CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error
	// RunInTx commits when fn returns nil and rolls back otherwise; the
	// connection is released either way.
	RunInTx(ctx context.Context, fn TxFunc) error
}

// Repository combines CRUD and transactional operations and exposes the
// Bun select builder for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	TransactionRepository[T]
	NewSelect() *bun.SelectQuery
}
