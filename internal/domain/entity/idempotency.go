package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey records the response to a mutating request so that a client
// retrying with the same Idempotency-Key header gets the same answer.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_scope;size:255;not null"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_idempotency_scope;not null"`
	Endpoint     string    `gorm:"size:255;not null"`
	RequestHash  string    `gorm:"size:64"`
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Pending reports whether the key is reserved by a request that has not
// finished yet.
func (i *IdempotencyKey) Pending() bool {
	return i.ResponseCode == 0
}

// SameRequest reports whether a retry carries the body the key was first
// used with.
func (i *IdempotencyKey) SameRequest(endpoint, requestHash string) bool {
	return i.Endpoint == endpoint && i.RequestHash == requestHash
}
