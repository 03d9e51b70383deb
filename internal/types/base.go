package types

import (
	"context"
	"time"
)

// Status is the record status of a stored entity, independent of any domain
// lifecycle status.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Metadata is free-form key/value data attached to an entity.
type Metadata map[string]string

// BaseModel carries the audit fields shared by every stored entity.
type BaseModel struct {
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// GetDefaultBaseModel returns a published BaseModel stamped with the current
// user from ctx.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	userID := GetUserID(ctx)
	return BaseModel{
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
}

// Touch stamps the update audit fields.
func (b *BaseModel) Touch(ctx context.Context) {
	b.UpdatedAt = time.Now().UTC()
	b.UpdatedBy = GetUserID(ctx)
}
