package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"feedboard/apperr"
)

func newErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", handler)
	return r
}

func doBoom(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(recorder, req)

	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", recorder.Body.String(), err)
	}
	return recorder, body
}

func TestErrorHandlerDefaultsToStatus500(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("something broke"))
		c.Abort()
	})

	recorder, body := doBoom(t, r)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", recorder.Code)
	}
	if body["message"] != "something broke" {
		t.Fatalf("expected thrown message, got %q", body["message"])
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("expected data to be omitted for plain errors")
	}
}

func TestErrorHandlerUsesDomainErrorStatusAndData(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(apperr.WithData(http.StatusUnprocessableEntity, "Invalid input.", []map[string]string{
			{"message": "E-Mail is invalid."},
		}))
		c.Abort()
	})

	recorder, body := doBoom(t, r)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}
	if body["message"] != "Invalid input." {
		t.Fatalf("expected domain message, got %q", body["message"])
	}
	if body["data"] == nil {
		t.Fatalf("expected data payload to be present")
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		panic("unexpected failure")
	})

	recorder, body := doBoom(t, r)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", recorder.Code)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("expected generic message, got %q", body["message"])
	}
}

func TestErrorHandlerLeavesSuccessfulResponsesAlone(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"message": "ok"})
	})

	recorder, body := doBoom(t, r)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", recorder.Code)
	}
	if body["message"] != "ok" {
		t.Fatalf("expected handler body to pass through, got %q", body["message"])
	}
}
