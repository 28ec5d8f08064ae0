package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/logger"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/server"
)

type MockPostReader struct {
	mock.Mock
}

func (m *MockPostReader) GetAllPosts(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	body, _ := args.Get(0).(json.RawMessage)
	return body, args.Error(1)
}

func (m *MockPostReader) GetRelatedPosts(ctx context.Context) (model.PostList, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.PostList), args.Error(1)
}

func (m *MockPostReader) GetPostByID(ctx context.Context, id int64) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	body, _ := args.Get(0).(json.RawMessage)
	return body, args.Error(1)
}

type MockRelatedPostCreator struct {
	mock.Mock
}

func (m *MockRelatedPostCreator) CreateRelated(ctx context.Context, input model.CreateRelatedPostInput) (model.PostDetail, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.PostDetail), args.Error(1)
}

func setupRouter(reader PostReader, creator RelatedPostCreator) http.Handler {
	gin.SetMode(gin.TestMode)
	s := server.New(server.RuntimeHTTP, logger.Discard())
	s.RegisterControllers(NewHealthController())
	s.RegisterGroups(APIGroup(
		NewPostController(reader, logger.Discard()),
		NewRelatedPostController(creator, logger.Discard()),
	))
	return s.Handler()
}

func perform(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func samplePost(id int64, title string) model.Post {
	return model.Post{ID: id, Attributes: model.PostAttributes{Title: title}}
}

func TestPostController_GetPosts(t *testing.T) {
	reader := new(MockPostReader)
	list := `{"data":[{"id":1,"slug":"first","attributes":{"title":"First"}}],"meta":{"pagination":{"page":1,"pageSize":25,"pageCount":1,"total":1}}}`
	reader.On("GetAllPosts", mock.Anything).Return(json.RawMessage(list), nil)

	w := perform(setupRouter(reader, nil), http.MethodGet, "/api/posts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, list, w.Body.String())
}

func TestPostController_GetPostsUpstreamDown(t *testing.T) {
	reader := new(MockPostReader)
	reader.On("GetAllPosts", mock.Anything).Return(nil, errorlib.ErrUpstreamUnavailable.New("posts"))

	w := perform(setupRouter(reader, nil), http.MethodGet, "/api/posts", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error_code":"UPSTREAM_UNAVAILABLE","message":"failed to fetch posts from the external API"}`, w.Body.String())
}

func TestPostController_RelatedRouteWinsOverID(t *testing.T) {
	reader := new(MockPostReader)
	reader.On("GetRelatedPosts", mock.Anything).Return(model.NewPostList(nil), nil)

	w := perform(setupRouter(reader, nil), http.MethodGet, "/api/posts/related", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"pagination":{"page":1,"pageSize":0,"pageCount":1,"total":0}}}`, w.Body.String())
	reader.AssertNotCalled(t, "GetPostByID", mock.Anything, mock.Anything)
}

func TestPostController_GetPost(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(*MockPostReader)
		wantStatus int
		wantCode   string
		wantBody   string
	}{
		{
			name: "found",
			path: "/api/posts/42",
			setup: func(m *MockPostReader) {
				m.On("GetPostByID", mock.Anything, int64(42)).Return(json.RawMessage(`{"data":{"id":42,"attributes":{"title":"Answer","formats":{"small":{}}}},"meta":{"extra":true}}`), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"data":{"id":42,"attributes":{"title":"Answer","formats":{"small":{}}}},"meta":{"extra":true}}`,
		},
		{
			name: "not found",
			path: "/api/posts/7",
			setup: func(m *MockPostReader) {
				m.On("GetPostByID", mock.Anything, int64(7)).Return(nil, errorlib.ErrNotFound.New(int64(7)))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "non integer id",
			path:       "/api/posts/abc",
			setup:      func(*MockPostReader) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(MockPostReader)
			tt.setup(reader)

			w := perform(setupRouter(reader, nil), http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantCode != "" {
				var body server.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.ErrorCode)
			}
			reader.AssertExpectations(t)
		})
	}
}

func TestRelatedPostController_CreateOnBothPaths(t *testing.T) {
	for _, path := range []string{"/api/post/related", "/api/posts/related"} {
		t.Run(path, func(t *testing.T) {
			creator := new(MockRelatedPostCreator)
			input := model.CreateRelatedPostInput{Title: "Hello", CoverImageURL: "https://x/y.png"}
			creator.On("CreateRelated", mock.Anything, input).Return(model.NewPostDetail(samplePost(1729000000123, "Hello")), nil)

			w := perform(setupRouter(nil, creator), http.MethodPost, path, `{"title":"Hello","coverImageUrl":"https://x/y.png"}`)

			assert.Equal(t, http.StatusCreated, w.Code)
			var got model.PostDetail
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, int64(1729000000123), got.Data.ID)
			assert.Equal(t, map[string]any{}, got.Meta)
			creator.AssertExpectations(t)
		})
	}
}

func TestRelatedPostController_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"title":`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"validation", `{"title":""}`, errorlib.ErrValidation.New("title must not be empty"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad encoding", `{"title":"a","coverImageUrl":"data:image/png;base64,%%"}`, errorlib.ErrImageUploadFailed.Wrap(errorlib.ErrInvalidImageEncoding.New()), http.StatusInternalServerError, "IMAGE_UPLOAD_FAILED"},
		{"upload failed", `{"title":"a","coverImageUrl":"data:image/png;base64,AA=="}`, errorlib.ErrImageUploadFailed.New(), http.StatusInternalServerError, "IMAGE_UPLOAD_FAILED"},
		{"permission", `{"title":"a","coverImageUrl":"https://x"}`, errorlib.ErrStoragePermissionDenied.New("create"), http.StatusForbidden, "STORAGE_PERMISSION_DENIED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockRelatedPostCreator)
			if tt.err != nil {
				creator.On("CreateRelated", mock.Anything, mock.Anything).Return(model.PostDetail{}, tt.err)
			}

			w := perform(setupRouter(nil, creator), http.MethodPost, "/api/posts/related", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			if tt.err == nil {
				creator.AssertNotCalled(t, "CreateRelated", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHealthController(t *testing.T) {
	h := setupRouter(nil, nil)

	w := perform(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = perform(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
