package entities

import "database/sql"

type Template struct {
	ID               int64          `db:"id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	PreviewImagePath sql.NullString `db:"preview_image_path"`
	Kind             string         `db:"template_type"`
}
