package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"powerplant_project/internal/domain"
	"powerplant_project/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// APIResponse is the body for business and request errors
type APIResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Messages reported for failed required fields, keyed by JSON field name
var fieldMessages = map[string]string{
	"name":          "Name is mandatory",
	"postcode":      "Post code is mandatory",
	"startPostcode": "Start post code is mandatory",
	"endPostcode":   "End post code is mandatory",
}

var registerOnce sync.Once

// registerValidators installs notblank and reports fields by JSON name
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			logger.Errorf("register notblank validator: %v", err)
		}
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// validationMessages flattens binding errors into a field -> message map.
// ok is false when err is not a validation failure (e.g. malformed JSON).
func validationMessages(err error) (map[string]string, bool) {
	var sliceErrs binding.SliceValidationError
	if errors.As(err, &sliceErrs) {
		out := make(map[string]string)
		for _, e := range sliceErrs {
			msgs, ok := validationMessages(e)
			if !ok {
				return nil, false
			}
			for k, v := range msgs {
				out[k] = v
			}
		}
		return out, true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out[fe.Field()] = msg
	}
	return out, true
}

// bindError answers a failed ShouldBindJSON
func bindError(c *gin.Context, err error) {
	if msgs, ok := validationMessages(err); ok {
		c.JSON(http.StatusBadRequest, msgs)
		return
	}
	c.JSON(http.StatusBadRequest, APIResponse{Message: "Malformed request body: " + err.Error(), Success: false})
}

// respondError maps service errors to status codes
func respondError(c *gin.Context, err error) {
	var conflict *domain.ConflictError
	var notFound *domain.NotFoundError

	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, APIResponse{Message: conflict.Error(), Success: false})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, APIResponse{Message: notFound.Error(), Success: false})
	default:
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, APIResponse{Message: "internal server error", Success: false})
	}
}
