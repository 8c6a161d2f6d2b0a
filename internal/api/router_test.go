package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/auth"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/blob"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/website"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router    *gin.Engine
	mem       *store.Memory
	agg       *website.Aggregator
	uploadDir string
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	mem, err := store.NewMemory("gym-one")
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	svc := services.New(mem)
	agg := website.NewAggregator(mem, svc)

	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	provider, err := auth.NewProvider(db, "api-test-secret-with-32-characters!", time.Hour)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	for _, u := range []struct{ email, role, project string }{
		{"admin@gym.test", auth.RoleAdmin, "gym-one"},
		{"editor@gym.test", "editor", "gym-one"},
	} {
		if _, err := auth.SaveUser(ctx, db, u.email, "s3cret", u.role, u.project); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}
	}
	authSvc := auth.NewService(provider, auth.NewChecker(auth.NewGormDirectory(db), "gym-one"))

	uploadDir := t.TempDir()
	blobs, err := blob.NewFilesystem(uploadDir, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}

	session, _, err := authSvc.Login(ctx, "admin@gym.test", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	return &testEnv{
		router: NewRouter(Deps{
			ProjectID: "gym-one",
			Services:  svc,
			Website:   agg,
			Auth:      authSvc,
			Blobs:     blobs,
		}),
		mem:       mem,
		agg:       agg,
		uploadDir: uploadDir,
		token:     session.Token,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) website(t *testing.T) store.Record {
	t.Helper()
	doc, err := e.agg.FetchCurrent(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrent: %v", err)
	}
	return doc
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/programs", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name     string
		body     map[string]string
		want     int
		wantBody string
	}{
		{"admin", map[string]string{"email": "admin@gym.test", "password": "s3cret"}, http.StatusOK, "token"},
		{"wrong password", map[string]string{"email": "admin@gym.test", "password": "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"not an admin", map[string]string{"email": "editor@gym.test", "password": "s3cret"}, http.StatusForbidden, "You do not have access to this admin panel"},
		{"missing fields", map[string]string{"email": "admin@gym.test"}, http.StatusBadRequest, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/login", tt.body)
			if w.Code != tt.want || !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("got %d %s, want %d containing %q", w.Code, w.Body.String(), tt.want, tt.wantBody)
			}
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/auth/me", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"projectId":"gym-one"`) {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodPost, "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/api/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestProgramLifecycleSyncsWebsite(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/programs", map[string]interface{}{"name": "Yoga", "price": "$50"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct{ ID string }
	decode(t, w, &created)

	programs := env.website(t)["programs"].([]map[string]any)
	if len(programs) != 1 || programs[0]["title"] != "Yoga" || programs[0]["id"] != created.ID {
		t.Fatalf("unexpected published programs %v", programs)
	}

	if w := env.do(t, http.MethodPut, "/api/programs/"+created.ID, map[string]interface{}{"title": "Power Yoga"}); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	programs = env.website(t)["programs"].([]map[string]any)
	if programs[0]["title"] != "Power Yoga" {
		t.Errorf("update not published: %v", programs)
	}

	if w := env.do(t, http.MethodGet, "/api/programs/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, "/api/programs/missing", map[string]interface{}{"title": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on update, got %d", w.Code)
	}

	if w := env.do(t, http.MethodDelete, "/api/programs/"+created.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if programs := env.website(t)["programs"].([]map[string]any); len(programs) != 0 {
		t.Errorf("expected no published programs, got %v", programs)
	}
}

func TestSyncFailureIsReported(t *testing.T) {
	env := newTestEnv(t)
	env.mem.FailCollection(website.Collection, errors.New("unavailable"))

	w := env.do(t, http.MethodPost, "/api/testimonials", map[string]interface{}{"name": "Ana"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/website/sync", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("expected manual sync to fail, got %d", w.Code)
	}
}

func TestCustomers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ids := map[string]string{}
	for _, rec := range []store.Record{
		{"name": "Maria Lopez", "email": "maria@mail.test", "phone": "+1 555 0100", "status": "new"},
		{"name": "John Smith", "email": "JOHN@mail.test", "phone": "+44 20 7946", "status": "contacted"},
		{"name": "Wei Chen", "email": "wei@mail.test", "phone": "+86 10 5555", "status": "new"},
	} {
		id, err := env.mem.Add(ctx, services.CollectionInquiries, rec)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids[rec.String("name")] = id
	}

	search := []struct {
		q    string
		want int
	}{
		{"", 3},
		{"maria", 1},
		{"john@", 1},
		{"5555", 1},
		{"555", 2},
		{"nobody", 0},
	}
	for _, tt := range search {
		w := env.do(t, http.MethodGet, "/api/customers?q="+tt.q, nil)
		var got []map[string]interface{}
		decode(t, w, &got)
		if len(got) != tt.want {
			t.Errorf("q=%q: expected %d customers, got %d", tt.q, tt.want, len(got))
		}
	}

	if w := env.do(t, http.MethodPut, "/api/customers/"+ids["Wei Chen"]+"/status", map[string]string{"status": "won"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid status: expected 400, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, "/api/customers/"+ids["Wei Chen"]+"/status", map[string]string{"status": "converted"}); w.Code != http.StatusOK {
		t.Errorf("valid status: expected 200, got %d %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodPut, "/api/customers/missing/status", map[string]string{"status": "closed"}); w.Code != http.StatusNotFound {
		t.Errorf("missing customer: expected 404, got %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/dashboard", nil)
	var stats struct {
		TotalCustomers  int                      `json:"totalCustomers"`
		NewInquiries    int                      `json:"newInquiries"`
		ActivePrograms  int                      `json:"activePrograms"`
		RecentInquiries []map[string]interface{} `json:"recentInquiries"`
	}
	decode(t, w, &stats)
	if stats.TotalCustomers != 3 || stats.NewInquiries != 1 || stats.ActivePrograms != 0 || len(stats.RecentInquiries) != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}

	w = env.do(t, http.MethodGet, "/api/customers/export", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Maria Lopez") {
		t.Errorf("export: %d %s", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodDelete, "/api/customers/"+ids["John Smith"], nil); w.Code != http.StatusOK {
		t.Errorf("delete: %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/customers/"+ids["John Smith"], nil); w.Code != http.StatusNotFound {
		t.Errorf("expected deleted customer to be gone, got %d", w.Code)
	}
}

func TestExportCustomersLeavesMissingDatesBlank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.mem.Add(ctx, services.CollectionInquiries, store.Record{"name": "Ada", "status": "new"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := env.mem.Merge(ctx, services.CollectionInquiries, "imported-1", store.Record{"name": "Grace", "status": "new"}); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/customers/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %v", rows)
	}
	created := map[string]string{}
	for _, row := range rows[1:] {
		created[row[0]] = row[5]
	}
	if created["Grace"] != "" {
		t.Errorf("expected blank date for imported customer, got %q", created["Grace"])
	}
	if _, err := time.Parse(time.RFC3339, created["Ada"]); err != nil {
		t.Errorf("expected RFC3339 date for Ada, got %q", created["Ada"])
	}
}

func TestSettingsPublishToWebsite(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/settings/whatsapp", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "{}" {
		t.Errorf("empty settings: %d %s", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodPut, "/api/settings/whatsapp", map[string]interface{}{"number": "+1555", "message": "Hi", "enabled": true}); w.Code != http.StatusOK {
		t.Fatalf("save whatsapp: %d %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodPut, "/api/settings/social", map[string]interface{}{"instagram": "@vibefit"}); w.Code != http.StatusOK {
		t.Fatalf("save social: %d %s", w.Code, w.Body.String())
	}

	doc := env.website(t)
	contact := doc["contact"].(map[string]any)
	if contact["whatsappNumber"] != "+1555" || contact["whatsappMessage"] != "Hi" {
		t.Errorf("unexpected contact %v", contact)
	}
	social := doc["footer"].(map[string]any)["socialMedia"].(map[string]any)
	if social["instagram"] != "@vibefit" {
		t.Errorf("unexpected social %v", social)
	}

	w = env.do(t, http.MethodGet, "/api/settings/whatsapp", nil)
	if !strings.Contains(w.Body.String(), `"number":"+1555"`) || strings.Contains(w.Body.String(), `"id"`) {
		t.Errorf("unexpected settings body %s", w.Body.String())
	}
}

func TestGalleryUploadCaptionAndDelete(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "front-desk.JPG")
	_, _ = part.Write([]byte("fake-jpeg"))
	_ = mw.WriteField("caption", "Front desk")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/gallery/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var uploaded struct{ ID, URL string }
	decode(t, w, &uploaded)

	key := strings.TrimPrefix(uploaded.URL, "http://localhost:8080/uploads/")
	if !strings.HasPrefix(key, "gallery/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected url %s", uploaded.URL)
	}
	if _, err := os.Stat(filepath.Join(env.uploadDir, filepath.FromSlash(key))); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	gallery := env.website(t)["gallery"].([]map[string]any)
	if len(gallery) != 1 || gallery[0]["url"] != uploaded.URL || gallery[0]["alt"] != "Front desk" || gallery[0]["category"] != "general" {
		t.Fatalf("unexpected gallery %v", gallery)
	}

	if w := env.do(t, http.MethodPatch, "/api/gallery/"+uploaded.ID+"/caption", map[string]string{"caption": "Lobby"}); w.Code != http.StatusOK {
		t.Fatalf("caption: %d %s", w.Code, w.Body.String())
	}
	if alt := env.website(t)["gallery"].([]map[string]any)[0]["alt"]; alt != "Lobby" {
		t.Errorf("caption not published, alt=%v", alt)
	}

	if w := env.do(t, http.MethodDelete, "/api/gallery/"+uploaded.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.uploadDir, filepath.FromSlash(key))); !os.IsNotExist(err) {
		t.Errorf("expected uploaded file to be removed, stat err=%v", err)
	}
	if gallery := env.website(t)["gallery"].([]map[string]any); len(gallery) != 0 {
		t.Errorf("expected empty gallery, got %v", gallery)
	}
}

func TestGalleryUploadRejectsNonImages(t *testing.T) {
	env := newTestEnv(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "notes.txt")
	_, _ = part.Write([]byte("hello"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/gallery/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWebsiteConfigEndpoints(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/website", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before first sync, got %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/website/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string
		Data   map[string]interface{}
	}
	decode(t, w, &resp)
	if resp.Data["contact"] == nil || resp.Data["updatedAt"] == nil {
		t.Errorf("unexpected sync response %s", w.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/api/website", nil); w.Code != http.StatusOK {
		t.Errorf("expected published config, got %d", w.Code)
	}
}
