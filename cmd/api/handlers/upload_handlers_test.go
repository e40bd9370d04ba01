package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedboard/cmd/api/auth"
	"feedboard/cmd/api/middleware"
	"feedboard/cmd/api/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const uploadTestSecret = "upload-test-secret"

var filePathPattern = regexp.MustCompile(`^.*/[0-9a-f-]{36}-cat\.png$`)

// newUploadRouter builds the gateway chain the upload endpoint really
// runs behind: terminal error handler, CORS, soft auth gate, handler.
func newUploadRouter(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	t.Setenv("JWT_SECRET", uploadTestSecret)
	manager, err := auth.NewJWTManagerFromEnv()
	require.NoError(t, err)

	store, err := storage.New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS())
	r.Use(middleware.Auth(manager))
	r.PUT("/post-image", UploadImageHandler(store))
	return r, store
}

func bearerToken(t *testing.T) string {
	t.Helper()
	manager, err := auth.NewJWTManagerFromEnv()
	require.NoError(t, err)
	token, err := manager.Sign("user-001", "user@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

type multipartBody struct {
	buf         bytes.Buffer
	contentType string
}

func buildMultipart(t *testing.T, fields map[string]string, filename, fileContentType string, content []byte) *multipartBody {
	t.Helper()
	body := &multipartBody{}
	writer := multipart.NewWriter(&body.buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		header.Set("Content-Type", fileContentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	body.contentType = writer.FormDataContentType()
	return body
}

func putImage(r *gin.Engine, body *multipartBody, authorization string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/post-image", &body.buf)
	req.Header.Set("Content-Type", body.contentType)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestUploadRejectsUnauthenticated(t *testing.T) {
	r, _ := newUploadRouter(t)

	body := buildMultipart(t, nil, "cat.png", "image/png", []byte("png-bytes"))
	recorder := putImage(r, body, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Not authenticated!", decodeBody(t, recorder)["message"])
}

func TestUploadWithoutFileIsNotAnError(t *testing.T) {
	r, _ := newUploadRouter(t)

	body := buildMultipart(t, nil, "", "", nil)
	recorder := putImage(r, body, bearerToken(t))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "No file provided!", decodeBody(t, recorder)["message"])
}

func TestUploadDropsDisallowedContentType(t *testing.T) {
	r, store := newUploadRouter(t)

	body := buildMultipart(t, nil, "cat.gif", "image/gif", []byte("gif-bytes"))
	recorder := putImage(r, body, bearerToken(t))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "No file provided!", decodeBody(t, recorder)["message"])

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected file must not be stored")
}

func TestUploadStoresAcceptedImage(t *testing.T) {
	r, store := newUploadRouter(t)

	content := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	body := buildMultipart(t, nil, "cat.png", "image/png", content)
	recorder := putImage(r, body, bearerToken(t))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	decoded := decodeBody(t, recorder)
	assert.Equal(t, "File stored", decoded["message"])

	filePath, _ := decoded["filePath"].(string)
	assert.Regexp(t, filePathPattern, filePath)

	got, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, content, got, "served file must be byte-identical to the upload")
	assert.Equal(t, store.Dir(), filepath.Dir(filePath))
}

func TestUploadDeletesReplacedImage(t *testing.T) {
	r, store := newUploadRouter(t)

	old := filepath.Join(store.Dir(), "old-image.png")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))

	body := buildMultipart(t, map[string]string{"oldPath": old}, "cat.png", "image/png", []byte("new"))
	recorder := putImage(r, body, bearerToken(t))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond, "replaced image must be removed")
}

func TestUploadedImageServedBackUnchanged(t *testing.T) {
	r, store := newUploadRouter(t)
	r.Static("/images", store.Dir())

	content := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 9, 8, 7}
	body := buildMultipart(t, nil, "cat.png", "image/png", content)
	recorder := putImage(r, body, bearerToken(t))
	require.Equal(t, http.StatusCreated, recorder.Code)

	filePath, _ := decodeBody(t, recorder)["filePath"].(string)
	getRecorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/images/"+filepath.Base(filePath), nil)
	r.ServeHTTP(getRecorder, req)

	require.Equal(t, http.StatusOK, getRecorder.Code)
	assert.Equal(t, content, getRecorder.Body.Bytes(), "served bytes must match the upload")
}

func TestUploadToleratesMissingOldPath(t *testing.T) {
	r, store := newUploadRouter(t)

	body := buildMultipart(t,
		map[string]string{"oldPath": filepath.Join(store.Dir(), "never-existed.png")},
		"cat.png", "image/png", []byte("new"))
	recorder := putImage(r, body, bearerToken(t))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "File stored", decodeBody(t, recorder)["message"])
}
