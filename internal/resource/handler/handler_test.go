package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mentorhub/go-services/internal/resource"
	"github.com/mentorhub/go-services/pkg/middleware"
)

var testDef = resource.Config{
	Name:              "testdata",
	Collection:        "testdata",
	AllowedSortFields: []string{"name", "description", "status", "created.at_time"},
	SupportsCreate:    true,
	SupportsUpdate:    true,
}

// testIdentity stands in for the auth middleware: every request is
// user1 with a fixed breadcrumb.
func testIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.TokenKey, resource.Token{UserID: "user1", Roles: []string{"admin"}})
		c.Set(middleware.BreadcrumbKey, resource.Breadcrumb{
			AtTime:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			ByUser:        "user1",
			FromIP:        "10.0.0.1",
			CorrelationID: "corr-1",
		})
		c.Next()
	}
}

func newTestRouter(def resource.Config, policy resource.Policy) (*gin.Engine, *resource.Service) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	svc := resource.NewService(def, resource.NewMemoryStore(), policy)
	api := g.Group("/api", testIdentity())
	Register(api, svc)
	return g, svc
}

func doJSON(t *testing.T, g *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w, out
}

func TestCreateAndGet(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)

	w, created := doJSON(t, g, http.MethodPost, "/api/testdata", `{"_id":"evil","name":"sample","status":"active"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	require.NotEqual(t, "evil", id)
	require.Equal(t, "sample", created["name"])

	audit, ok := created["created"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "user1", audit["by_user"])
	require.Equal(t, "10.0.0.1", audit["from_ip"])
	require.Equal(t, "corr-1", audit["correlation_id"])

	w, got := doJSON(t, g, http.MethodGet, "/api/testdata/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, id, got["_id"])
	require.Equal(t, audit, got["created"])
}

func TestGetNotFound(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)
	w, body := doJSON(t, g, http.MethodGet, "/api/testdata/"+primitive.NewObjectID().Hex(), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, body["error"], "not found")
}

func TestListPaginationWalk(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		w, _ := doJSON(t, g, http.MethodPost, "/api/testdata", `{"name":"`+n+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	names := func(body map[string]interface{}) []string {
		items := body["items"].([]interface{})
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.(map[string]interface{})["name"].(string))
		}
		return out
	}

	w, p1 := doJSON(t, g, http.MethodGet, "/api/testdata?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"a", "b"}, names(p1))
	require.Equal(t, true, p1["has_more"])
	require.Equal(t, float64(2), p1["limit"])
	cursor, _ := p1["next_cursor"].(string)
	require.NotEmpty(t, cursor)

	w, p2 := doJSON(t, g, http.MethodGet, "/api/testdata?limit=2&after_id="+cursor, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"c", "d"}, names(p2))
	require.Equal(t, true, p2["has_more"])
	cursor, _ = p2["next_cursor"].(string)

	w, p3 := doJSON(t, g, http.MethodGet, "/api/testdata?limit=2&after_id="+cursor, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"e"}, names(p3))
	require.Equal(t, false, p3["has_more"])
	require.Nil(t, p3["next_cursor"])
}

func TestListParameterValidation(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)
	for _, qs := range []string{
		"limit=ten",
		"sort_by=password",
		"order=sideways",
		"after_id=not-a-cursor",
	} {
		w, body := doJSON(t, g, http.MethodGet, "/api/testdata?"+qs, "")
		require.Equal(t, http.StatusBadRequest, w.Code, "query %s", qs)
		require.NotEmpty(t, body["error"], "query %s", qs)
	}
}

func TestPatchPartialUpdate(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)
	w, created := doJSON(t, g, http.MethodPost, "/api/testdata", `{"name":"doc","description":"before","status":"active"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := created["_id"].(string)

	w, updated := doJSON(t, g, http.MethodPatch, "/api/testdata/"+id, `{"description":"after"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "after", updated["description"])
	require.Equal(t, "doc", updated["name"])
	require.Equal(t, "active", updated["status"])
	require.Equal(t, created["created"], updated["created"])

	w, _ = doJSON(t, g, http.MethodPatch, "/api/testdata/"+primitive.NewObjectID().Hex(), `{"status":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// Read-only resources register neither POST nor PATCH.
func TestCapabilityFlagsControlRoutes(t *testing.T) {
	readOnly := resource.Config{
		Name:              "profile",
		Collection:        "profiles",
		AllowedSortFields: []string{"name"},
	}
	g, _ := newTestRouter(readOnly, nil)

	w, _ := doJSON(t, g, http.MethodPost, "/api/profile", `{"name":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, g, http.MethodPatch, "/api/profile/"+primitive.NewObjectID().Hex(), `{"name":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, g, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestForbiddenMapsTo403(t *testing.T) {
	policy := resource.RoleBased{Requires: map[string][]string{
		resource.OpCreate: {"staff"},
	}}
	g, _ := newTestRouter(testDef, policy)
	w, body := doJSON(t, g, http.MethodPost, "/api/testdata", `{"name":"x"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NotEmpty(t, body["error"])
}

func TestMalformedBodyIs400(t *testing.T) {
	g, _ := newTestRouter(testDef, nil)
	w, _ := doJSON(t, g, http.MethodPost, "/api/testdata", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
