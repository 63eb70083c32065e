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
	"fmt"

	"github.com/tomoncle/itemsvc/database"
	"github.com/uptrace/bun"
)

// Item is the only stored entity. The id is chosen by the client.
type Item struct {
	bun.BaseModel `bun:"table:item,alias:i"`

	ID   int64  `bun:"id,pk" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

func (i *Item) String() string {
	return fmt.Sprintf("Item<%d %q>", i.ID, i.Name)
}

// Model returns the item table registration for a database manager.
func Model() database.SQLModel {
	return database.NewModelAdapter((*Item)(nil), 10)
}

// DefaultItems are the rows seeded into an empty table.
func DefaultItems() []*Item {
	return []*Item{
		{ID: 1, Name: "Item 1"},
		{ID: 2, Name: "Item 2"},
		{ID: 3, Name: "Item 3"},
	}
}
