package models

import (
	"time"

	"github.com/zsmartex/rampx/types"
)

type Member struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role" gorm:"default:maker"`
	State     string    `json:"state"`
	Level     int32     `json:"level" gorm:"default:0" validate:"min:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) IsActive() bool {
	return m.State == "active"
}

func (m *Member) IsResolver() bool {
	return m.Role == types.RoleResolver
}

func (m *Member) IsMediator() bool {
	return m.Role == types.RoleMediator
}
