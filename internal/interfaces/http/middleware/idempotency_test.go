package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/infrastructure/cache"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error { return nil }

func idempotentRouter(store *cache.InMemoryIdempotencyStore, status int) *gin.Engine {
	r := gin.New()
	r.Use(Actor(), Idempotency(store, time.Minute))
	r.POST("/claims", func(c *gin.Context) { c.String(status, "done") })
	return r
}

func TestIdempotency(t *testing.T) {
	headers := map[string]string{HeaderActorID: "alice", HeaderIdempotencyKey: "k-1"}

	t.Run("repeated key is rejected", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		r := idempotentRouter(store, http.StatusOK)

		first := serve(r, "POST", "/claims", headers)
		second := serve(r, "POST", "/claims", headers)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), dto.ErrCodeDuplicateRequest)
	})

	t.Run("keys are scoped per actor", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		r := idempotentRouter(store, http.StatusOK)

		serve(r, "POST", "/claims", headers)
		w := serve(r, "POST", "/claims", map[string]string{HeaderActorID: "bob", HeaderIdempotencyKey: "k-1"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no header passes through", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		r := idempotentRouter(store, http.StatusOK)

		assert.Equal(t, http.StatusOK, serve(r, "POST", "/claims", nil).Code)
		assert.Equal(t, http.StatusOK, serve(r, "POST", "/claims", nil).Code)
		assert.Equal(t, 0, store.Size())
	})

	t.Run("failed request releases its key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		r := idempotentRouter(store, http.StatusUnprocessableEntity)

		serve(r, "POST", "/claims", headers)
		w := serve(r, "POST", "/claims", headers)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, 0, store.Size())
	})

	t.Run("partial application keeps its key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		r := idempotentRouter(store, http.StatusMultiStatus)

		serve(r, "POST", "/claims", headers)
		w := serve(r, "POST", "/claims", headers)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("store failure answers 503", func(t *testing.T) {
		store := new(mockIdempotencyStore)
		store.On("Reserve", mock.Anything, "alice:POST:/claims:k-1", time.Minute).
			Return(false, errors.New("redis down"))

		r := gin.New()
		r.Use(Actor(), Idempotency(store, time.Minute))
		r.POST("/claims", func(c *gin.Context) { c.String(http.StatusOK, "done") })

		w := serve(r, "POST", "/claims", headers)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeStoreUnavailable)
		store.AssertExpectations(t)
	})

	t.Run("nil store disables the check", func(t *testing.T) {
		r := gin.New()
		r.Use(Idempotency(nil, time.Minute))
		r.POST("/claims", func(c *gin.Context) { c.String(http.StatusOK, "done") })

		assert.Equal(t, http.StatusOK, serve(r, "POST", "/claims", headers).Code)
		assert.Equal(t, http.StatusOK, serve(r, "POST", "/claims", headers).Code)
	})
}
