package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
)

// pathID parses a positive numeric path parameter and writes a 400 when it is
// missing or malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, name, "must be a positive integer", middleware.GetRequestID(c))
		return 0, false
	}
	return id, true
}

// fail records err for the logging middleware and writes the mapped response.
func fail(c *gin.Context, err error) {
	// Attach error for middleware logging
	c.Error(err)
	response.FromDomainError(c, err, middleware.GetRequestID(c))
}

func badPayload(c *gin.Context, err error) {
	c.Error(err)
	response.BadRequest(c, "invalid payload: "+err.Error(), middleware.GetRequestID(c))
}
