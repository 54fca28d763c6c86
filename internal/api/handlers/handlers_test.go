package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/api/middleware"
	"github.com/tasklane/backend/internal/models"
)

type fixture struct {
	admin     models.User
	member    models.User
	workspace models.Workspace
	project   models.Project
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		admin:  models.User{Email: "admin@example.com", DisplayName: "Admin", Role: models.RoleAdmin, IsActive: true},
		member: models.User{Email: "member@example.com", DisplayName: "Member", Role: models.RoleMember, IsActive: true},
	}
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.member).Error)
	f.workspace = models.Workspace{Name: "Acme", Slug: "acme", OwnerID: f.admin.ID}
	require.NoError(t, db.Create(&f.workspace).Error)
	f.project = models.Project{WorkspaceID: f.workspace.ID, Name: "Website", Identifier: "WEB"}
	require.NoError(t, db.Create(&f.project).Error)
	return f
}

// routerAs returns a router whose requests are authenticated as user.
func routerAs(user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.RoleKey, user.Role)
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
