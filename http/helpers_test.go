package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sagarc03/filetrail"
	filetrailhttp "github.com/sagarc03/filetrail/http"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, subject string) ([]filetrail.UserFile, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]filetrail.UserFile), args.Error(1)
}

func (m *MockService) FetchURL(ctx context.Context, subject string, id int64) (string, error) {
	args := m.Called(ctx, subject, id)
	return args.String(0), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, subject string, nf filetrail.NewUserFile) (filetrail.CreatedUserFile, error) {
	args := m.Called(ctx, subject, nf)
	return args.Get(0).(filetrail.CreatedUserFile), args.Error(1)
}

// stubVerifier accepts tokens of the form "valid-<subject>".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (string, error) {
	subject, ok := strings.CutPrefix(token, "valid-")
	if !ok || subject == "" {
		return "", fmt.Errorf("bad token %q: %w", token, filetrail.ErrUnauthorized)
	}
	return subject, nil
}

func newTestRouter(t *testing.T) (http.Handler, *MockService) {
	t.Helper()
	service := new(MockService)
	handler := filetrailhttp.NewHandler(&filetrailhttp.HandlerConfig{Verifier: stubVerifier{}}, service)
	return handler.Router(), service
}

func serve(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func ptr(f float64) *float64 { return &f }
