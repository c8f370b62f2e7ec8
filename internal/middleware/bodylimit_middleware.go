package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// formMemory bounds the part of a multipart form kept in memory while
// parsing; larger file parts spill to disk.
const formMemory = 8 << 20

// BodyLimitMiddleware caps request bodies at limit bytes. Forms on
// state-changing requests are parsed here, so an oversized body is answered
// with 413 before anything downstream reads it.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			tooLarge(c)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		err := c.Request.ParseMultipartForm(formMemory)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			tooLarge(c)
			return
		}
		c.Next()
	}
}

func tooLarge(c *gin.Context) {
	log.Warn().Str("path", c.Request.URL.Path).Int64("content_length", c.Request.ContentLength).Msg("Request body too large")
	c.String(http.StatusRequestEntityTooLarge, "Request too large")
	c.Abort()
}
