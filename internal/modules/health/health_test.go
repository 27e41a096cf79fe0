package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDeviceCounter struct {
	online int64
}

func (s *staticDeviceCounter) CountOnline(ctx context.Context) (int64, error) {
	return s.online, nil
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(db, &staticDeviceCounter{online: 4})

	t.Run("health ok", func(t *testing.T) {
		mock.ExpectPing()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/health", nil)

		handler.Health(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
		assert.Contains(t, w.Body.String(), `"online":4`)
	})

	t.Run("ready db failure", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(assert.AnError)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/ready", nil)

		handler.Ready(c)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":{"status":"error"`)
	})

	t.Run("alive", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/alive", nil)

		handler.Alive(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
