package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"civicreport/models"
	"civicreport/service"
)

func testRouter(auth *service.AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(auth)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	router.GET("/protected", chain...)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	auth := service.NewAuthService(nil, "test-secret", time.Hour)
	token, err := auth.GenerateToken(7, models.RoleCitizen)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	router := testRouter(auth)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := service.NewAuthService(nil, "test-secret", time.Hour)

	tests := []struct {
		name       string
		role       string
		required   string
		wantStatus int
	}{
		{
			name:       "matching role",
			role:       models.RoleStaff,
			required:   models.RoleStaff,
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin passes any check",
			role:       models.RoleAdmin,
			required:   models.RoleStaff,
			wantStatus: http.StatusOK,
		},
		{
			name:       "citizen blocked from staff route",
			role:       models.RoleCitizen,
			required:   models.RoleStaff,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GenerateToken(1, tt.role)
			if err != nil {
				t.Fatalf("failed to generate token: %v", err)
			}

			router := testRouter(auth, RequireRole(tt.required))
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := service.NewAuthService(nil, "test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", OptionalAuth(auth), func(c *gin.Context) {
		_, authenticated := UserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	// Anonymous request passes through.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("anonymous request should pass, got %d", w.Code)
	}

	// A present-but-invalid token is still rejected.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token should be rejected, got %d", w.Code)
	}
}
