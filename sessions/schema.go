package sessions

import (
	"time"
)

// Session represents one open notebook session.
type Session struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Path         string    `gorm:"not null;index:idx_path" json:"path"`
	Name         string    `gorm:"default:''" json:"name"`
	KernelName   string    `gorm:"not null;default:'go'" json:"kernel_name"`
	LastActivity time.Time `gorm:"not null;index:idx_last_activity" json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
