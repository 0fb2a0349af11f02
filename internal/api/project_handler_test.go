package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"portfolio/internal/database"
	"portfolio/internal/upload"
)

type projectJSON struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	TechStack []string `json:"tech_stack"`
	ImageURL  *string  `json:"image_url"`
	Featured  bool     `json:"featured"`
}

func (s *testServer) fileExists(t *testing.T, ref string) bool {
	t.Helper()
	name, ok := upload.NameFromRef(ref)
	if !ok {
		t.Fatalf("not an upload reference: %q", ref)
	}
	exists, _ := afero.Exists(s.fs, name)
	return exists
}

func (s *testServer) storedFiles(t *testing.T) int {
	t.Helper()
	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		return 0
	}
	return len(entries)
}

func TestProjects_ImageLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	body, ct := multipartBody(t, map[string]string{
		"title":         "Portfolio",
		"description":   "This site",
		"tech_stack":    "Go, gin ,postgres,",
		"featured":      "true",
		"display_order": "2",
	}, filePart{upload.FieldName, "shot.PNG", "image/png", []byte("first")})

	w := s.do(t, http.MethodPost, "/api/projects", body, ct, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	created := decode[projectJSON](t, w)
	if created.ImageURL == nil || !strings.HasPrefix(*created.ImageURL, "/uploads/") || !strings.HasSuffix(*created.ImageURL, ".png") {
		t.Fatalf("image_url = %v", created.ImageURL)
	}
	if strings.Join(created.TechStack, "|") != "Go|gin|postgres" || !created.Featured {
		t.Fatalf("created = %+v", created)
	}
	firstImage := *created.ImageURL
	if !s.fileExists(t, firstImage) {
		t.Fatal("image not stored")
	}

	w = s.do(t, http.MethodGet, firstImage, nil, "", "")
	if w.Code != http.StatusOK || w.Body.String() != "first" {
		t.Fatalf("serve image = %d %q", w.Code, w.Body.String())
	}
	if _, err := http.ParseTime(w.Header().Get("Last-Modified")); err != nil {
		t.Fatalf("Last-Modified = %q: %v", w.Header().Get("Last-Modified"), err)
	}

	// no image: the stored reference survives
	body, ct = multipartBody(t, map[string]string{"title": "Portfolio v2"})
	w = s.do(t, http.MethodPut, "/api/projects/1", body, ct, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", w.Code, w.Body.String())
	}
	updated := decode[projectJSON](t, w)
	if updated.Title != "Portfolio v2" || updated.ImageURL == nil || *updated.ImageURL != firstImage {
		t.Fatalf("updated = %+v", updated)
	}
	if len(updated.TechStack) != 0 || updated.Featured {
		t.Fatalf("scalar fields not overwritten: %+v", updated)
	}

	// new image replaces the old one
	body, ct = multipartBody(t, map[string]string{"title": "Portfolio v3"},
		filePart{upload.FieldName, "shot.webp", "image/webp", []byte("second")})
	w = s.do(t, http.MethodPut, "/api/projects/1", body, ct, token)
	if w.Code != http.StatusOK {
		t.Fatalf("replace status = %d body = %s", w.Code, w.Body.String())
	}
	replaced := decode[projectJSON](t, w)
	if replaced.ImageURL == nil || *replaced.ImageURL == firstImage {
		t.Fatalf("image not replaced: %v", replaced.ImageURL)
	}
	if s.fileExists(t, firstImage) {
		t.Fatal("superseded image left behind")
	}

	w = s.do(t, http.MethodDelete, "/api/projects/1", nil, "", token)
	if w.Code != http.StatusOK || decode[map[string]string](t, w)["message"] != "Project deleted successfully" {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	if s.fileExists(t, *replaced.ImageURL) {
		t.Fatal("image of deleted project left behind")
	}

	expectError(t, s.do(t, http.MethodGet, "/api/projects/1", nil, "", ""), http.StatusNotFound, "Project not found")
	expectError(t, s.do(t, http.MethodDelete, "/api/projects/1", nil, "", token), http.StatusNotFound, "Project not found")
}

func TestProjects_JSONBodyWithoutImage(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/api/projects", map[string]any{
		"title":      "CLI",
		"tech_stack": "go",
	}, s.adminToken(t))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if p := decode[projectJSON](t, w); p.ImageURL != nil || len(p.TechStack) != 1 {
		t.Fatalf("project = %+v", p)
	}
}

func TestProjects_RejectedUploadLeavesNoTrace(t *testing.T) {
	cases := []struct {
		name   string
		file   filePart
		status int
		text   string
	}{
		{
			name:   "executable",
			file:   filePart{upload.FieldName, "setup.exe", "application/x-msdownload", []byte("MZ")},
			status: http.StatusUnsupportedMediaType,
			text:   "Only image files are allowed",
		},
		{
			name:   "image extension with foreign media type",
			file:   filePart{upload.FieldName, "shot.png", "text/html", []byte("<html>")},
			status: http.StatusUnsupportedMediaType,
			text:   "Only image files are allowed",
		},
		{
			name:   "eleven mebibytes",
			file:   filePart{upload.FieldName, "huge.jpg", "image/jpeg", bytes.Repeat([]byte{0xff}, 11<<20)},
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			body, ct := multipartBody(t, map[string]string{"title": "Nope"}, tc.file)

			w := s.do(t, http.MethodPost, "/api/projects", body, ct, s.adminToken(t))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
			if tc.text != "" {
				expectError(t, w, tc.status, tc.text)
			}

			var count int64
			s.db.Model(&database.Project{}).Count(&count)
			if count != 0 {
				t.Fatalf("%d project rows created", count)
			}
			if n := s.storedFiles(t); n != 0 {
				t.Fatalf("%d files stored", n)
			}
		})
	}
}

func TestProjects_UnexpectedFileFieldIsRejected(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, map[string]string{"title": "x"},
		filePart{"avatar", "a.png", "image/png", []byte("png")})

	w := s.do(t, http.MethodPost, "/api/projects", body, ct, s.adminToken(t))
	expectError(t, w, http.StatusBadRequest, `Unexpected file field "avatar"`)
}

func TestProjects_UpdateMissingProjectStoresNothing(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, map[string]string{"title": "ghost"},
		filePart{upload.FieldName, "a.gif", "image/gif", []byte("GIF89a")})

	w := s.do(t, http.MethodPut, "/api/projects/99", body, ct, s.adminToken(t))
	expectError(t, w, http.StatusNotFound, "Project not found")
	if n := s.storedFiles(t); n != 0 {
		t.Fatalf("%d files stored for a missing project", n)
	}
}

func TestProjects_ListCachedUntilWrite(t *testing.T) {
	s := newTestServer(t)

	if got := decode[[]projectJSON](t, s.doJSON(t, http.MethodGet, "/api/projects", nil, "")); len(got) != 0 {
		t.Fatalf("initial list = %+v", got)
	}

	// a row written behind the API is not visible until an API write clears the cache
	if err := s.db.Create(&database.Project{Title: "direct", DisplayOrder: 1}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := decode[[]projectJSON](t, s.doJSON(t, http.MethodGet, "/api/projects", nil, "")); len(got) != 0 {
		t.Fatalf("list served from store instead of cache: %+v", got)
	}

	s.doJSON(t, http.MethodPost, "/api/projects", map[string]any{"title": "via api"}, s.adminToken(t))

	got := decode[[]projectJSON](t, s.doJSON(t, http.MethodGet, "/api/projects", nil, ""))
	if len(got) != 2 || got[0].Title != "via api" || got[1].Title != "direct" {
		t.Fatalf("list after write = %+v", got)
	}
}

func TestUploads_OnlyFlatImageNames(t *testing.T) {
	s := newTestServer(t)
	_ = afero.WriteFile(s.fs, "secret.txt", []byte("nope"), 0o644)

	for _, path := range []string{"/uploads/secret.txt", "/uploads/..%2Fsecret.txt", "/uploads/missing.png"} {
		w := s.do(t, http.MethodGet, path, nil, "", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
	}
}

func TestUploads_LastModifiedFromStore(t *testing.T) {
	s := newTestServer(t)
	if err := afero.WriteFile(s.fs, "1700000000.png", []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.fs.Chtimes("1700000000.png", stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	w := s.do(t, http.MethodGet, "/uploads/1700000000.png", nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Last-Modified"); got != "Fri, 01 Mar 2024 12:00:00 GMT" {
		t.Fatalf("Last-Modified = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
}
