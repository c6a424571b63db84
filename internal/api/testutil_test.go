package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"devfolio/internal/auth"
	"devfolio/internal/config"
	"devfolio/internal/database"
	"devfolio/internal/storage"
)

const testJWTSecret = "test-secret"

type fakeStorage struct {
	uploaded     map[string][]byte
	contentTypes map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploaded:     map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	s.contentTypes[objectName] = contentType
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) GetObject(_ context.Context, objectKey string) (io.ReadCloser, error) {
	b, ok := s.uploaded[objectKey]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) StatObject(_ context.Context, objectKey string) (storage.ObjectInfo, error) {
	b, ok := s.uploaded[objectKey]
	if !ok {
		return storage.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return storage.ObjectInfo{
		Key:         objectKey,
		Size:        int64(len(b)),
		ContentType: s.contentTypes[objectKey],
	}, nil
}

type sentMail struct {
	name    string
	email   string
	message string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendContactMessage(name, email, message string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{name: name, email: email, message: message})
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newUnreachableRedis 返回指向不可达地址的客户端；限流计数失败时登录路径按放行处理。
func newUnreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokenService, err := auth.NewTokenService(testJWTSecret, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return tokenService
}

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	storage *fakeStorage
	mailer  *fakeMailer
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	storageClient := newFakeStorage()
	contactMailer := &fakeMailer{}
	tokenService := newTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		API: config.APIConfig{Port: 8080},
		Auth: config.AuthConfig{
			JWTSecret:             testJWTSecret,
			TokenTTL:              30 * 24 * time.Hour,
			LoginRateLimitPerHour: 10,
			LoginLockThreshold:    5,
			LoginLockTTL:          15 * time.Minute,
		},
	}

	router := NewRouter(cfg, logger)
	RegisterRoutes(router, db, tokenService, newUnreachableRedis(t), logger, storageClient, contactMailer, cfg)

	return &testEnv{
		router:  router,
		db:      db,
		storage: storageClient,
		mailer:  contactMailer,
		tokens:  tokenService,
	}
}

func (env *testEnv) seedAdmin(t *testing.T, email, password string) database.AdminUser {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := database.AdminUser{Email: email, PasswordHash: hashed, Name: "Test Admin"}
	if err := env.db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func (env *testEnv) adminToken(t *testing.T, adminID uint) string {
	t.Helper()
	token, err := env.tokens.GenerateToken(adminID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func newMultipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, env *testEnv, path, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := newMultipartUpload(t, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formContentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
