package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the common base struct for all domain models.
// IDs are opaque UUID strings assigned on insert. It replaces gorm.Model to
// avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a new UUID when the ID is still empty.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{&User{}, &Favorite{}, &Review{}}
}
