package season

import (
	"database/sql"
	"time"
)

// Season is a named scoring period. It has no update path.
type Season struct {
	ID        int64     `json:"id"`
	Name      string    `json:"season"`
	CreatedAt time.Time `json:"-"`
}

type store struct {
	db  *sql.DB
	now func() time.Time
}
