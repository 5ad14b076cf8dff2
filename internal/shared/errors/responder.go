package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates an application error into a ProblemDetail.
// It returns false when it does not recognise the error.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes Problem Details responses, consulting its mappers first.
type Responder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
	mappers []ErrorMapper
}

// NewResponder creates a responder with optional base URI and error mappers.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, mappers: mappers}
}

// DefaultResponder uses relative URIs for problem types and no mappers.
var DefaultResponder = NewResponder("")

// AddMapper appends an error mapper to the chain.
func (r *Responder) AddMapper(mapper ErrorMapper) {
	if mapper != nil {
		r.mappers = append(r.mappers, mapper)
	}
}

// Respond sends a ProblemDetail response with proper content type.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError converts err to a ProblemDetail and responds.
func (r *Responder) RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	r.Respond(c, r.Problem(err))
}

// Problem resolves the ProblemDetail for err without writing it.
func (r *Responder) Problem(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	for _, mapper := range r.mappers {
		if p, ok := mapper(err); ok {
			return p
		}
	}
	return ErrInternal.WithDetail(err.Error())
}

// NotFound sends a 404 problem response.
func (r *Responder) NotFound(c *gin.Context, resourceType string, identifier any) {
	r.Respond(c, NewNotFoundProblem(resourceType, identifier))
}

// BadRequest sends a 400 problem response.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// ValidationFailed sends a 400 problem response with field errors.
func (r *Responder) ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	r.Respond(c, NewValidationProblem(fieldErrors))
}

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, problem ProblemDetail) {
	DefaultResponder.Respond(c, problem)
}

// HTTPStatusFromError extracts HTTP status from an error if possible.
func HTTPStatusFromError(err error) int {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem.Status
	}
	return http.StatusInternalServerError
}
