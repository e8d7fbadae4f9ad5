package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"restaurant_pos_backend/internal/config"
	"restaurant_pos_backend/internal/middleware"
)

func testConfig() config.Config {
	return config.Config{Port: "8080", CORSAllowedOrigins: []string{"http://localhost:3000"}}
}

func TestEngine_PingAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	engine := newEngine(testConfig(), db)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateCmd_RejectsUnknownDirection(t *testing.T) {
	err := migrateCmd.RunE(migrateCmd, []string{"sideways"})
	require.ErrorContains(t, err, "unknown direction")
}

func TestTokenCmd_ValidatesFlags(t *testing.T) {
	tokenStaffID, tokenRole = 0, middleware.RoleWaiter
	require.ErrorContains(t, tokenCmd.RunE(tokenCmd, nil), "--staff-id")

	tokenStaffID, tokenRole = 5, "Chef"
	require.ErrorContains(t, tokenCmd.RunE(tokenCmd, nil), "--role")
}
