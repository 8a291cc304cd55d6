package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/tenon/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        errors.New(errors.ErrCodeDiagramNotFound, "diagram not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "DIAGRAM_NOT_FOUND",
		},
		{
			name:       "validation",
			err:        errors.New(errors.ErrCodeInvalidManifest, "bad manifest"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_MANIFEST",
		},
		{
			name:       "non-convergence",
			err:        errors.New(errors.ErrCodeNonConvergence, "did not converge"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NON_CONVERGENCE",
		},
		{
			name:       "plain error",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "box"}`))
		var p payload
		if err := ReadJSON(httptest.NewRecorder(), req, &p); err != nil {
			t.Fatalf("ReadJSON error: %v", err)
		}
		if p.Name != "box" {
			t.Errorf("Name = %q", p.Name)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "box", "bogus": 1}`))
		var p payload
		if err := ReadJSON(httptest.NewRecorder(), req, &p); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Fatalf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		var p payload
		if err := ReadJSON(httptest.NewRecorder(), req, &p); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Fatalf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("trailing garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "a"} {"name": "b"}`))
		var p payload
		if err := ReadJSON(httptest.NewRecorder(), req, &p); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Fatalf("err = %v, want INVALID_INPUT", err)
		}
	})
}

func TestStatusForCode(t *testing.T) {
	if got := StatusForCode(errors.ErrCodeUnsupported); got != http.StatusUnprocessableEntity {
		t.Errorf("UNSUPPORTED = %d, want 422", got)
	}
	if got := StatusForCode(errors.ErrCodeInternal); got != http.StatusInternalServerError {
		t.Errorf("INTERNAL = %d, want 500", got)
	}
	if got := StatusForCode("SOMETHING_NEW"); got != http.StatusInternalServerError {
		t.Errorf("unknown code = %d, want 500", got)
	}
}
