package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		page  int
		limit int
		skip  int
	}{
		{"defaults", "/api/posts", 1, 10, 0},
		{"explicit", "/api/posts?page=3&limit=20", 3, 20, 40},
		{"limit clamped to max", "/api/posts?limit=500", 1, 50, 0},
		{"zero page falls back", "/api/posts?page=0", 1, 10, 0},
		{"negative limit falls back", "/api/posts?limit=-5", 1, 10, 0},
		{"garbage falls back", "/api/posts?page=abc&limit=xyz", 1, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, skip := parsePagination(testContext(t, tt.url))
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.skip, skip)
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		pages int64
	}{
		{"exact fit", 1, 10, 30, 3},
		{"partial last page", 2, 10, 31, 4},
		{"empty", 1, 10, 0, 0},
		{"single item", 1, 10, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := paginationMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, meta["page"])
			assert.Equal(t, tt.limit, meta["limit"])
			assert.Equal(t, tt.total, meta["total"])
			assert.Equal(t, tt.pages, meta["pages"])
		})
	}
}
