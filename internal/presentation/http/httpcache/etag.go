// Package httpcache provides the stateless HTTP edge-cache helpers:
// content-hash ETags and conditional-request handling. It has no
// relationship to the tag-indexed data cache.
package httpcache

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ComputeETag returns a strong, quoted entity tag derived from the response
// body. Deterministic: identical bodies always hash to the same tag.
func ComputeETag(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf(`"%x"`, sum[:16])
}

// IsConditionalHit reports whether the request's If-None-Match header
// matches etag. A wildcard matches any representation.
func IsConditionalHit(r *http.Request, etag string) bool {
	header := r.Header.Get("If-None-Match")
	if header == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// WriteJSON emits body with ETag/Cache-Control/Vary headers, answering
// 304 Not Modified when the client already holds the current version.
// Responses vary per authenticated caller, so intermediaries must key on
// the Authorization header.
func WriteJSON(c *gin.Context, body []byte) {
	etag := ComputeETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, must-revalidate")
	c.Header("Vary", "Authorization")

	if IsConditionalHit(c.Request, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
