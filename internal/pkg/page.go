package pkg

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage = 1
	// MaxCatalogPage is the highest page the movie catalog will serve.
	MaxCatalogPage = 500
)

// ParsePage reads the "page" query parameter. Missing, non-numeric and
// non-positive values yield 1; values above MaxCatalogPage are clamped.
func ParsePage(c *gin.Context) int {
	return ClampPage(c.Query("page"))
}

// ClampPage converts raw to a page number within [1, MaxCatalogPage].
func ClampPage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return defaultPage
	}
	if page > MaxCatalogPage {
		return MaxCatalogPage
	}
	return page
}
