package graph

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"feedboard/apperr"
)

// graphqlRequest is the wire form of a GraphQL HTTP request.
type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// shapedError is the stable client error shape for domain errors raised
// by resolvers. Transport errors keep the default GraphQL error shape.
type shapedError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
}

// graphqlResponse re-renders an execution result with reshaped errors.
type graphqlResponse struct {
	Data   any   `json:"data"`
	Errors []any `json:"errors,omitempty"`
}

// Handler mounts the schema on a single endpoint. POST carries the
// operation as JSON (or raw application/graphql); GET carries it in the
// query string; a browser GET without a query gets the GraphiQL page.
// The identity derived by the auth middleware travels to resolvers via
// the request context.
func Handler(schema graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && c.Query("query") == "" &&
			strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(graphiqlPage))
			return
		}

		req, err := parseRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, graphqlResponse{
				Errors: []any{gqlerrors.NewFormattedError(err.Error())},
			})
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Request.Context(),
		})

		if len(result.Errors) == 0 {
			c.JSON(http.StatusOK, result)
			return
		}

		resp := graphqlResponse{Data: result.Data}
		for _, fe := range result.Errors {
			resp.Errors = append(resp.Errors, formatError(fe))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func parseRequest(c *gin.Context) (*graphqlRequest, error) {
	if c.Request.Method == http.MethodGet {
		req := &graphqlRequest{
			Query:         c.Query("query"),
			OperationName: c.Query("operationName"),
		}
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return nil, errors.New("variables must be a JSON object")
			}
		}
		return req, nil
	}

	contentType := c.ContentType()
	if contentType == "application/graphql" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, errors.New("failed to read request body")
		}
		return &graphqlRequest{Query: string(body)}, nil
	}

	var req graphqlRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return nil, errors.New("request body must be valid JSON")
	}
	return &req, nil
}

// formatError reshapes one execution error. A resolver-raised domain
// error becomes {message, status, data}; anything else (syntax errors,
// validation errors, plain resolver errors) passes through with the
// default shape.
func formatError(fe gqlerrors.FormattedError) any {
	var ae *apperr.Error
	if !errors.As(resolverError(fe), &ae) {
		return fe
	}

	msg := ae.Message
	if msg == "" {
		msg = "An error occured."
	}
	return shapedError{Message: msg, Status: ae.StatusCode(), Data: ae.Data}
}

// resolverError digs the error a resolver returned out of the located
// error wrappers the execution engine adds around it.
func resolverError(fe gqlerrors.FormattedError) error {
	err := fe.OriginalError()
	for err != nil {
		switch wrapped := err.(type) {
		case *gqlerrors.Error:
			err = wrapped.OriginalError
		case gqlerrors.Error:
			err = wrapped.OriginalError
		case gqlerrors.FormattedError:
			err = wrapped.OriginalError()
		default:
			return err
		}
	}
	return nil
}
