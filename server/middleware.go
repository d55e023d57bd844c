package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/etnz/tradedesk"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const userIDKey = "user_id"

// requireUser verifies the bearer token and stores its subject as the user
// id of the request.
func (s *Server) requireUser(c *gin.Context) {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		failWith(c, http.StatusUnauthorized, errors.New("missing bearer token"))
		return
	}
	if s.Auth == nil {
		failWith(c, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	sub, err := s.Auth.Verify(token)
	if err != nil {
		failWith(c, http.StatusUnauthorized, err)
		return
	}
	c.Set(userIDKey, sub)
	c.Next()
}

func userID(c *gin.Context) string { return c.GetString(userIDKey) }

var validatorsOnce sync.Once

// registerValidators adds the ticker rule to gin's validator and names
// fields after their json tag in errors.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			_, err := tradedesk.NormalizeTicker(fl.Field().String())
			return err == nil
		})
	})
}

// bind decodes the JSON body into req. Binding failures are answered with
// 400 and a message naming the first invalid field.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		failWith(c, http.StatusBadRequest, tradedesk.ValidationError{Field: e.Field(), Message: message(e)})
		return false
	}
	failWith(c, http.StatusBadRequest, tradedesk.ValidationError{Message: "invalid JSON body: " + err.Error()})
	return false
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "ticker":
		return "must be 1 to 10 letters"
	case "gt", "gte", "lt", "lte", "min", "max":
		return "must be " + e.Tag() + " " + e.Param()
	case "oneof":
		return "must be one of " + e.Param()
	}
	return "failed the " + e.Tag() + " rule"
}
