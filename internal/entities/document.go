package entities

import "time"

type Document struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Kind      string    `db:"kind"`
	IsPublic  bool      `db:"is_public"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type DocumentSummary struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Kind      string    `db:"kind"`
	IsPublic  bool      `db:"is_public"`
	UpdatedAt time.Time `db:"updated_at"`
}
