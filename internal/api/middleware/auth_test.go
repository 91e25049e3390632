package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/codeclash-backend/internal/identity"
	"github.com/codeclash/codeclash-backend/internal/models"
	jwtutil "github.com/codeclash/codeclash-backend/pkg/jwt"
)

type fakeResolver struct {
	users map[string]*models.User
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, userID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return user, nil
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{name: "auth query", url: "/ws?auth=aaa", want: "aaa"},
		{name: "token query", url: "/ws?token=bbb", want: "bbb"},
		{name: "bearer header", url: "/ws", header: "Bearer ccc", want: "ccc"},
		{name: "auth query wins over token query", url: "/ws?auth=aaa&token=bbb", want: "aaa"},
		{name: "token query wins over header", url: "/ws?token=bbb", header: "Bearer ccc", want: "bbb"},
		{name: "malformed header", url: "/ws", header: "ccc", want: ""},
		{name: "missing", url: "/ws", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			require.Equal(t, tt.want, ExtractToken(req))
		})
	}
}

func newAuthRouter(t *testing.T, resolver identity.Resolver) (*gin.Engine, *jwtutil.Manager) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	manager := jwtutil.NewManager("test-secret", time.Hour)

	router := gin.New()
	router.GET("/protected", Auth(manager, resolver), func(c *gin.Context) {
		user := c.MustGet(ContextUserKey).(*models.User)
		c.JSON(http.StatusOK, gin.H{"userId": user.ID})
	})
	return router, manager
}

func TestAuth_ValidToken(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"user-1": {ID: "user-1", DisplayName: "tester"},
	}}
	router, manager := newAuthRouter(t, resolver)

	token, err := manager.Generate("user-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?auth="+token, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user-1")
}

func TestAuth_MissingToken(t *testing.T) {
	router, _ := newAuthRouter(t, &fakeResolver{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	router, _ := newAuthRouter(t, &fakeResolver{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?auth=garbage", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UnknownUser(t *testing.T) {
	router, manager := newAuthRouter(t, &fakeResolver{})

	token, err := manager.Generate("ghost")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?auth="+token, nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_StoreUnavailable(t *testing.T) {
	resolver := &fakeResolver{err: identity.ErrStoreUnavailable}
	router, manager := newAuthRouter(t, resolver)

	token, err := manager.Generate("user-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?auth="+token, nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
