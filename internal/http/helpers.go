package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readinglog/internal/log"
)

// --- Response Types ---

// ErrorResponse is the error body for every JSON API failure.
type ErrorResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Message: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error("Internal error",
		zap.String("context", context),
		zap.String("request_id", c.GetString(log.ContextKeyRequestID)),
		zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// Anything that is not a positive integer does not name a resource, so it
// is answered with a 404.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondNotFound(c, "book")
		return 0, false
	}
	return uint(id), true
}

// textPayload is the request body accepted by create and update.
type textPayload struct {
	Text string `json:"text" form:"text"`
}

var errMissingText = errors.New("missing text field")

// bindText reads the "text" field from a JSON or form body.
func bindText(c *gin.Context) (string, error) {
	var payload textPayload
	if err := c.ShouldBind(&payload); err != nil {
		return "", errMissingText
	}
	return payload.Text, nil
}

// --- URLs ---

// requestScheme honours TLS and the X-Forwarded-Proto header set by
// reverse proxies.
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// absoluteURL resolves a path against the scheme and host of the request.
func absoluteURL(c *gin.Context, path string) string {
	return requestScheme(c) + "://" + c.Request.Host + path
}

// isJSONRequest reports whether the client asked for JSON rather than HTML.
func isJSONRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func hasAPIPrefix(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, apiRoot)
}
