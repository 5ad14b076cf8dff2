package adoptionserver

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// pathParam binds a required simple-style path parameter.
func pathParam(c *gin.Context, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || strings.TrimSpace(value) == "" {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid format for parameter %s", name)))
		return "", false
	}
	return strings.TrimSpace(value), true
}

// queryParam binds an optional form-style query parameter; absent yields "".
func queryParam(c *gin.Context, name string) (string, bool) {
	var value string
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &value); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid format for parameter %s", name)))
		return "", false
	}
	return strings.TrimSpace(value), true
}
