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

package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/itemsvc/database"
	"github.com/tomoncle/itemsvc/repository"
	"github.com/tomoncle/itemsvc/utils"
	"github.com/uptrace/bun"
)

// ErrDuplicateID is returned when an insert collides with an existing id.
var ErrDuplicateID = errors.New("item id already exists")

type Service interface {
	// List returns every item in ascending id order.
	List(ctx context.Context) ([]*Item, error)

	// Get returns the item with id, or nil and no error when there is none.
	Get(ctx context.Context, id int64) (*Item, error)

	// Create inserts one item and returns it.
	Create(ctx context.Context, it *Item) (*Item, error)

	// BulkCreate inserts all items in one transaction, or none of them.
	BulkCreate(ctx context.Context, items []*Item) (int, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)

	// Seed inserts DefaultItems when the table is empty and reports how
	// many rows it wrote.
	Seed(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo repository.Repository[Item]
	log  *logrus.Logger
}

// NewService returns the item service over db.
func NewService(db *bun.DB) Service {
	return &serviceImpl{
		repo: repository.NewRepository[Item](db),
		log:  utils.NewLogger("ITEM"),
	}
}

func (s *serviceImpl) List(ctx context.Context) ([]*Item, error) {
	items, err := s.repo.GetAll(ctx, "id ASC")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (*Item, error) {
	it, err := s.repo.GetOne(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

func (s *serviceImpl) Create(ctx context.Context, it *Item) (*Item, error) {
	if it == nil {
		return nil, fmt.Errorf("create item: nil item")
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, insertError(err, fmt.Sprintf("create item %d", it.ID))
	}
	s.log.WithField("id", it.ID).Debug("Item created")
	return it, nil
}

func (s *serviceImpl) BulkCreate(ctx context.Context, items []*Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for i, it := range items {
		if it == nil {
			return 0, fmt.Errorf("bulk create: nil item at %d", i)
		}
	}
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.repo.CreateWithTx(ctx, tx, items...)
	})
	if err != nil {
		return 0, insertError(err, fmt.Sprintf("bulk create %d items", len(items)))
	}
	s.log.WithField("count", len(items)).Debug("Items created")
	return len(items), nil
}

func (s *serviceImpl) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *serviceImpl) Seed(ctx context.Context) (int, error) {
	seeded := 0
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		n, err := s.repo.CountWithTx(ctx, tx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		defaults := DefaultItems()
		if err := s.repo.CreateWithTx(ctx, tx, defaults...); err != nil {
			return err
		}
		seeded = len(defaults)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed items: %w", err)
	}
	if seeded > 0 {
		s.log.WithField("count", seeded).Info("Seeded default items")
	}
	return seeded, nil
}

// insertError maps a duplicate key violation to ErrDuplicateID while
// keeping the driver error in the chain.
func insertError(err error, op string) error {
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicateID, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
