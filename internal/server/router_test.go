package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/khanbek/khancloud/internal/auth"
	"github.com/khanbek/khancloud/internal/config"
	"github.com/khanbek/khancloud/internal/file"
)

type testEnv struct {
	router *gin.Engine
	tokens *auth.TokenService
	users  *userStoreFake
	files  *fileRepoFake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Storage: config.StorageConfig{
			Driver:       config.DriverDisk,
			PublicPrefix: "/uploads",
		},
		Auth: config.AuthConfig{
			JWTSecret: "router-test-secret",
			TokenTTL:  8 * time.Hour,
		},
		Metrics: config.MetricsConfig{PrometheusPath: "/metrics"},
	}

	users := newUserStoreFake()
	tokens := auth.NewTokenService(cfg.Auth)
	authService := auth.NewService(users, tokens)

	blobs, err := file.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	files := newFileRepoFake()
	fileService := file.NewService(files, blobs, users)

	router := NewRouter(Dependencies{
		Config:       cfg,
		TokenService: tokens,
		AuthService:  authService,
		FileService:  fileService,
		BlobStore:    blobs,
	})

	return &testEnv{router: router, tokens: tokens, users: users, files: files}
}

func (e *testEnv) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	e.users.add(auth.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    time.Now(),
	})
}

func (e *testEnv) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		return rr, ""
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return rr, resp.Token
}

func (e *testEnv) uploadFile(t *testing.T, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestLoginListDeleteScenario(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@x.com", "secret")

	rr, token := env.login(t, "admin@x.com", "secret")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if token == "" {
		t.Fatalf("login returned no token")
	}

	var loginBody map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &loginBody); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	var user map[string]string
	if err := json.Unmarshal(loginBody["user"], &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user["email"] != "admin@x.com" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash leaked in response")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listRR := httptest.NewRecorder()
	env.router.ServeHTTP(listRR, req)
	if listRR.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", listRR.Code)
	}
	var files []file.StoredFile
	if err := json.Unmarshal(listRR.Body.Bytes(), &files); err != nil {
		t.Fatalf("list response is not an array: %v", err)
	}

	delReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/files/%s", uuid.New()), nil)
	delReq.Header.Set("Authorization", "Bearer "+token)
	delRR := httptest.NewRecorder()
	env.router.ServeHTTP(delRR, delReq)
	if delRR.Code != http.StatusNotFound {
		t.Fatalf("delete missing: expected 404, got %d", delRR.Code)
	}
	var delBody map[string]string
	if err := json.Unmarshal(delRR.Body.Bytes(), &delBody); err != nil {
		t.Fatalf("decode delete body: %v", err)
	}
	if delBody["message"] != "File not found" {
		t.Fatalf("unexpected delete message: %q", delBody["message"])
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@x.com", "secret")

	rr, _ := env.login(t, "nobody@x.com", "secret")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown user: expected 400, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "User not found" {
		t.Fatalf("unexpected message: %q", body["message"])
	}

	rr, token := env.login(t, "admin@x.com", "wrong")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad password: expected 400, got %d", rr.Code)
	}
	if token != "" {
		t.Fatalf("token issued for bad password")
	}
}

func TestFileRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/files"},
		{http.MethodPost, "/api/files/upload"},
		{http.MethodGet, "/api/files/stats"},
		{http.MethodGet, "/api/files/" + uuid.NewString() + "/download"},
		{http.MethodDelete, "/api/files/" + uuid.NewString()},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, rr.Code)
		}
	}

	// Upload must not write a blob for an unauthenticated request.
	if env.files.createCalls != 0 {
		t.Fatalf("metadata store touched by unauthenticated request")
	}
}

func TestUploadThenListShowsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@x.com", "secret")
	_, token := env.login(t, "admin@x.com", "secret")

	first := env.uploadFile(t, token, "first.txt", []byte("first"))
	if first.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", first.Code, first.Body.String())
	}
	second := env.uploadFile(t, token, "second.txt", []byte("second"))
	if second.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d", second.Code)
	}

	var uploadBody struct {
		Message string          `json:"message"`
		File    file.StoredFile `json:"file"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &uploadBody); err != nil {
		t.Fatalf("decode upload body: %v", err)
	}
	if uploadBody.Message != "File uploaded successfully" {
		t.Fatalf("unexpected upload message: %q", uploadBody.Message)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var files []file.StoredFile
	if err := json.Unmarshal(rr.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].OriginalName != "second.txt" {
		t.Fatalf("expected newest first, got %q", files[0].OriginalName)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/files/"+files[0].ID.String(), nil)
	delReq.Header.Set("Authorization", "Bearer "+token)
	delRR := httptest.NewRecorder()
	env.router.ServeHTTP(delRR, delReq)
	if delRR.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", delRR.Code)
	}

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req.Clone(context.Background()))
	if err := json.Unmarshal(rr.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(files) != 1 || files[0].OriginalName != "first.txt" {
		t.Fatalf("deleted file still listed: %+v", files)
	}
}

func TestDownloadStreamsUploadedFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@x.com", "secret")
	_, token := env.login(t, "admin@x.com", "secret")

	content := []byte("downloadable payload")
	rr := env.uploadFile(t, token, "payload.bin", content)
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d", rr.Code)
	}

	var uploadBody struct {
		File file.StoredFile `json:"file"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &uploadBody); err != nil {
		t.Fatalf("decode upload body: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+uploadBody.File.ID.String()+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	dlRR := httptest.NewRecorder()
	env.router.ServeHTTP(dlRR, req)

	if dlRR.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d: %s", dlRR.Code, dlRR.Body.String())
	}
	if !bytes.Equal(dlRR.Body.Bytes(), content) {
		t.Fatalf("downloaded bytes differ from upload")
	}
	if got := dlRR.Header().Get("Content-Disposition"); got != `attachment; filename="payload.bin"` {
		t.Fatalf("unexpected content disposition %q", got)
	}

	missing := httptest.NewRequest(http.MethodGet, "/api/files/"+uuid.NewString()+"/download", nil)
	missing.Header.Set("Authorization", "Bearer "+token)
	missRR := httptest.NewRecorder()
	env.router.ServeHTTP(missRR, missing)
	if missRR.Code != http.StatusNotFound {
		t.Fatalf("download missing: expected 404, got %d", missRR.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@x.com", "secret")
	_, token := env.login(t, "admin@x.com", "secret")

	env.uploadFile(t, token, "a.txt", []byte("a"))

	req := httptest.NewRequest(http.MethodGet, "/api/files/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rr.Code)
	}
	var stats map[string]int64
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["users"] != 1 || stats["files"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestRootAndHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("root: expected 200, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rr.Code)
	}
}

// --- fakes ---

type userStoreFake struct {
	users map[string]auth.User
}

func newUserStoreFake() *userStoreFake {
	return &userStoreFake{users: make(map[string]auth.User)}
}

func (f *userStoreFake) add(u auth.User) {
	f.users[u.Email] = u
}

func (f *userStoreFake) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	user, ok := f.users[email]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f *userStoreFake) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fileRepoFake struct {
	records     map[uuid.UUID]file.StoredFile
	createCalls int
	clock       time.Time
}

func newFileRepoFake() *fileRepoFake {
	return &fileRepoFake{
		records: make(map[uuid.UUID]file.StoredFile),
		clock:   time.Now(),
	}
}

func (f *fileRepoFake) Create(ctx context.Context, meta file.StoredFile) (file.StoredFile, error) {
	f.createCalls++
	f.clock = f.clock.Add(time.Millisecond)
	meta.UploadedAt = f.clock
	f.records[meta.ID] = meta
	return meta, nil
}

func (f *fileRepoFake) List(ctx context.Context) ([]file.StoredFile, error) {
	list := make([]file.StoredFile, 0, len(f.records))
	for _, m := range f.records {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list, nil
}

func (f *fileRepoFake) Get(ctx context.Context, id uuid.UUID) (file.StoredFile, error) {
	meta, ok := f.records[id]
	if !ok {
		return file.StoredFile{}, file.ErrFileNotFound
	}
	return meta, nil
}

func (f *fileRepoFake) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return file.ErrFileNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fileRepoFake) Count(ctx context.Context) (int64, error) {
	return int64(len(f.records)), nil
}
