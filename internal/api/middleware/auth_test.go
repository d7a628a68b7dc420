package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoapp/internal/model"
	"todoapp/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockResolver struct {
	resolveFunc func(ctx context.Context, token string) (model.User, error)
	calls       int
}

func (m *mockResolver) ResolveToken(ctx context.Context, token string) (model.User, error) {
	m.calls++
	return m.resolveFunc(ctx, token)
}

func newAuthedRouter(resolver TokenResolver, handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()

	r := gin.New()
	r.GET("/protected", Authenticate(resolver), func(c *gin.Context) {
		*handlerCalls++
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": user.Email, "token": TokenFromContext(c)})
	})
	return r
}

func TestAuthenticateMissingHeader(t *testing.T) {
	resolver := &mockResolver{resolveFunc: func(ctx context.Context, token string) (model.User, error) {
		t.Fatal("resolver must not be called without a token")
		return model.User{}, nil
	}}
	var handlerCalls int
	r := newAuthedRouter(resolver, &handlerCalls)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if handlerCalls != 0 {
		t.Fatalf("handler must not run on missing header")
	}
}

func TestAuthenticateRejectedToken(t *testing.T) {
	resolver := &mockResolver{resolveFunc: func(ctx context.Context, token string) (model.User, error) {
		return model.User{}, context.Canceled // 任意错误都应映射为 401
	}}
	var handlerCalls int
	r := newAuthedRouter(resolver, &handlerCalls)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeader, "revoked-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected exactly one resolution attempt, got %d", resolver.calls)
	}
	if handlerCalls != 0 {
		t.Fatalf("handler must not run on rejected token")
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	user := model.User{ID: primitive.NewObjectID(), Email: "a@b.com"}
	resolver := &mockResolver{resolveFunc: func(ctx context.Context, token string) (model.User, error) {
		if token != "good-token" {
			t.Fatalf("unexpected token %q", token)
		}
		return user, nil
	}}
	var handlerCalls int
	r := newAuthedRouter(resolver, &handlerCalls)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeader, "good-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if handlerCalls != 1 {
		t.Fatalf("expected handler to run once, got %d", handlerCalls)
	}
}
