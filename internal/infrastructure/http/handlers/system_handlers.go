package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidneyplan/mealplanner/pkg/errors"
)

// Root handles GET /
func Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello, World!")
}

// NotFound answers requests that matched no route
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errors.ErrorResponse{Error: "Route not found"})
}
