package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-booking-backend/internal/app"
	"github.com/nekogravitycat/campus-booking-backend/internal/notify"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/campus-booking-backend/internal/seed"
	userHttp "github.com/nekogravitycat/campus-booking-backend/internal/user/http"
)

const (
	adminEmail = "admin@campus.edu"
	password   = "demo123"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testApp struct {
	t         *testing.T
	container *app.Container
	store     storage.Storage
	sent      *sentNotifications
}

type sentNotifications struct {
	items []notify.Notification
}

func (s *sentNotifications) Notify(_ context.Context, n notify.Notification) error {
	s.items = append(s.items, n)
	return nil
}

func testCatalog() *seed.Catalog {
	return &seed.Catalog{
		Users: []seed.UserSeed{{Email: adminEmail, Password: password, Admin: true}},
		Resources: []seed.ResourceSeed{
			{ID: "R1", Name: "Computer Lab A", Category: "lab", Capacity: 40},
			{ID: "R2", Name: "Seminar Hall B", Category: "hall", Capacity: 150},
			{ID: "R3", Name: "Projector Set", Category: "equipment", Capacity: 1},
		},
	}
}

func newTestApp(t *testing.T, store storage.Storage) *testApp {
	t.Helper()
	sent := &sentNotifications{}
	c, err := app.NewContainer(context.Background(), app.Config{
		Store:      store,
		Notifier:   sent,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4, // Lower cost for testing purposes
		Seed:       testCatalog(),
	})
	require.NoError(t, err)
	return &testApp{t: t, container: c, store: store, sent: sent}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.container.Router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/auth/login", userHttp.LoginRequest{Email: email, Password: password}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

// registerAndLogin creates a regular user and returns its token.
func (a *testApp) registerAndLogin(email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{Email: email, Password: password}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(email)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
