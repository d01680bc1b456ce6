package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notesbuzz/internal/apperr"
	"notesbuzz/internal/blobstore"
	"notesbuzz/internal/metrics"
	"notesbuzz/internal/users"
)

type memUserRepo struct {
	mu     sync.Mutex
	byName map[string]*users.User
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: map[string]*users.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.byName {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperr.ErrConflict
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	m.byName[u.Username] = &cp
	return nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byName[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// memFiles is an in-memory FileStore with the same observable behaviour as
// blobstore.Store.
type memFiles struct {
	mu      sync.Mutex
	files   []blobstore.StoredFile
	data    map[string][]byte
	err     error
	pingErr error
}

func newMemFiles() *memFiles {
	return &memFiles{data: map[string][]byte{}}
}

func (m *memFiles) Put(_ context.Context, in blobstore.PutInput) (blobstore.StoredFile, error) {
	if m.err != nil {
		return blobstore.StoredFile{}, m.err
	}
	if !blobstore.AcceptsContentType(in.ContentType) {
		return blobstore.StoredFile{}, apperr.ErrRejectedType
	}
	b, err := io.ReadAll(in.Reader)
	if err != nil {
		return blobstore.StoredFile{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	f := blobstore.StoredFile{
		ID:          id,
		ObjectKey:   "uploads/" + id,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		SizeBytes:   int64(len(b)),
		Category:    in.Category,
		UploadedAt:  time.Now().UTC(),
	}
	m.files = append(m.files, f)
	m.data[id] = b
	return f, nil
}

func (m *memFiles) ListByPrefix(_ context.Context, prefix string) ([]blobstore.StoredFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []blobstore.StoredFile{}
	for i := len(m.files) - 1; i >= 0; i-- {
		if strings.HasPrefix(m.files[i].Filename, prefix) {
			out = append(out, m.files[i])
		}
	}
	return out, nil
}

func (m *memFiles) Get(_ context.Context, id string) (blobstore.StoredFile, io.ReadCloser, error) {
	if m.err != nil {
		return blobstore.StoredFile{}, nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.ID == id {
			return f, io.NopCloser(bytes.NewReader(m.data[id])), nil
		}
	}
	return blobstore.StoredFile{}, nil, apperr.ErrNotFound
}

func (m *memFiles) Rename(_ context.Context, id, filename string) (blobstore.StoredFile, error) {
	if m.err != nil {
		return blobstore.StoredFile{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.files {
		if m.files[i].ID == id {
			m.files[i].Filename = filename
			return m.files[i], nil
		}
	}
	return blobstore.StoredFile{}, apperr.ErrNotFound
}

func (m *memFiles) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			delete(m.data, id)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *memFiles) Ping(context.Context) error { return m.pingErr }

type testEnv struct {
	handler http.Handler
	files   *memFiles
	users   *memUserRepo
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, maxUploadBytes int64) *testEnv {
	t.Helper()
	repo := newMemUserRepo()
	store, err := users.NewStore(repo, bcrypt.MinCost)
	require.NoError(t, err)

	files := newMemFiles()
	m := metrics.New()
	srv := New(Config{
		Users:          store,
		Files:          files,
		Metrics:        m,
		MaxUploadBytes: maxUploadBytes,
	})
	return &testEnv{handler: srv.Handler(), files: files, users: repo, metrics: m}
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postJSON(path string, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	return e.do(http.MethodPost, path, bytes.NewReader(b), "application/json")
}

type formFile struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

// multipartBody builds a form; fields are written in the order given, with
// the file part placed at fileIndex.
func multipartBody(t *testing.T, fields [][2]string, file *formFile, fileIndex int) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	writeFile := func() {
		if file == nil {
			return
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	for i, kv := range fields {
		if i == fileIndex {
			writeFile()
		}
		require.NoError(t, mw.WriteField(kv[0], kv[1]))
	}
	if fileIndex >= len(fields) {
		writeFile()
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, subject, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var fields [][2]string
	if subject != "" {
		fields = append(fields, [2]string{"subject", subject})
	}
	body, ct := multipartBody(t, fields, &formFile{
		field:       "file",
		filename:    filename,
		contentType: contentType,
		content:     content,
	}, len(fields))
	return e.do(http.MethodPost, "/upload", body, ct)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
