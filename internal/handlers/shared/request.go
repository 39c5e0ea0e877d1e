package handlers

import (
	"errors"
	"io"
	"net/http"

	"distress-server/internal/utils"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bindJSON decodes the body into dst, writing a 400 and returning false when it is not valid JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.HandleError(c, utils.NewValidationError("Invalid request body", map[string]string{"body": err.Error()}))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints where the body may be left out. An empty body, including an empty
// chunked one, leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		utils.HandleError(c, utils.NewValidationError("Invalid request body", map[string]string{"body": err.Error()}))
		return false
	}
	return true
}

// pathID parses the named path parameter as an ObjectID, writing a 400 and returning false on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(name, c.Param(name))
	if err != nil {
		utils.HandleError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}
