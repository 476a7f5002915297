package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  *zap.Logger
	TTL  time.Duration
	Now  func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when an authenticated client
// repeats a request with the same Idempotency-Key. Requests without the
// header pass through. Only 2xx responses are stored, so a failed checkout
// may be retried under the same key. Reusing a key for a different body is
// rejected with 422, and a duplicate arriving while the first request is still
// running gets 409.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = IdempotencyKeyTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Log == nil {
		config.Log = zap.NewNop()
	}
	log := config.Log.Named("idempotency")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])
		endpoint := c.Request.Method + " " + c.FullPath()

		ctx := context.WithoutCancel(c.Request.Context())
		now := config.Now()

		existing, err := config.Repo.GetByKey(ctx, idempotencyKey, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if existing != nil {
			if !existing.IsExpired(now) {
				switch {
				case !existing.SameRequest(endpoint, requestHash):
					response.ErrorWithCode(c, http.StatusUnprocessableEntity,
						"Idempotency-Key was already used for a different request")
				case existing.Pending():
					inProgress(c)
				default:
					c.Header("X-Idempotency-Replayed", "true")
					c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
				}
				c.Abort()
				return
			}
			if err := config.Repo.DeleteExpired(ctx, now); err != nil {
				log.Warn("failed to purge expired keys", zap.Error(err))
			}
		}

		// The unique (key, user) constraint makes the reservation the single
		// point where concurrent duplicates are told apart.
		reservation := &entity.IdempotencyKey{
			Key:         idempotencyKey,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: requestHash,
			ExpiresAt:   now.Add(config.TTL),
		}
		if err := config.Repo.Create(ctx, reservation); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				inProgress(c)
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}

		completed := false
		defer func() {
			if completed {
				return
			}
			if err := config.Repo.Release(ctx, idempotencyKey, userID); err != nil {
				log.Error("failed to release idempotency key",
					zap.String("request_id", c.GetString(response.RequestIDKey)),
					zap.Error(err))
			}
		}()

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		if err := config.Repo.Complete(ctx, idempotencyKey, userID, status, blw.body.String()); err != nil {
			log.Error("failed to store idempotent response",
				zap.String("request_id", c.GetString(response.RequestIDKey)),
				zap.Error(err))
			return
		}
		completed = true
	}
}

func inProgress(c *gin.Context) {
	c.Header("Retry-After", "1")
	response.ErrorWithCode(c, http.StatusConflict,
		"A request with this Idempotency-Key is still in progress")
}
