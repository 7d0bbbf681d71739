package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// scopedLogger installs a request-scoped logger writing to the returned buffer.
func scopedLogger(r *gin.Engine) *bytes.Buffer {
	var buf bytes.Buffer
	lg := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Set("logger", &lg)
		c.Next()
	})
	return &buf
}

func Test_fail_500_LogsCauseNotBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := scopedLogger(r)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Next()
	})

	r.GET("/rabbits/3", func(c *gin.Context) {
		_ = c.Error(errors.New("database is locked"))
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "something went wrong, please try again")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rabbits/3", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.RequestID != "rid-500" || resp.Code != ErrCodeInternal {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "database is locked") {
		t.Fatalf("cause leaked to client: %s", w.Body.String())
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "database is locked") {
		t.Fatalf("expected error log with cause, got: %s", logs)
	}
}

func Test_fail_4xx_NotLogged_RequestIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := scopedLogger(r)
	// Request id only in the context, not yet on the response headers.
	r.Use(func(c *gin.Context) {
		c.Set("requestID", "rid-ctx")
		c.Next()
	})
	r.DELETE("/rabbits/8", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeCageEmpty, "cage is empty")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/rabbits/8", nil))

	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json 404: %v", err)
	}
	if w.Code != http.StatusNotFound || er.RequestID != "rid-ctx" || er.Code != ErrCodeCageEmpty || er.Message != "cage is empty" {
		t.Fatalf("unexpected 404: %d %+v", w.Code, er)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx should not be logged here: %s", buf.String())
	}
}

func Test_fail_AbortsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/x",
		func(c *gin.Context) { fail(c, http.StatusBadRequest, ErrCodeInvalidCage, "bad cage") },
		func(c *gin.Context) { reached = true },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusBadRequest || reached {
		t.Fatalf("status=%d reached=%v", w.Code, reached)
	}
}

func Test_SuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chats", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"chat_id": -100}) })
	r.DELETE("/rabbits/4", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chats", nil))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"chat_id":-100`) {
		t.Fatalf("ok = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/rabbits/4", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent = %d %q", w.Code, w.Body.String())
	}
}
