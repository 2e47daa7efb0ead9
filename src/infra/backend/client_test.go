package backend

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/core/requestinfo"
	"malayalees/src/infra/logger"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":  "admin",
		"auth": "ROLE_ADMIN",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

// fakeBackend serves /api/authenticate and delegates the rest to h.
type fakeBackend struct {
	logins atomic.Int32
	token  string
	h      http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/authenticate" {
		f.logins.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": f.token})
		return
	}
	f.h(w, r)
}

func newTestClient(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	apiBase := srv.URL + "/api"
	httpClient := srv.Client()
	return NewWithHTTPClient(apiBase, NewTokenSource(apiBase, "svc", "pw", httpClient), httpClient, logger.Discard())
}

func TestListEvents_QueryAndTotal(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var got *http.Request
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("X-Total-Count", "42")
		_ = json.NewEncoder(w).Encode([]domain.EventDetails{{ID: 1, Title: "Onam"}, {ID: 2, Title: "Vishu"}})
	}
	c := newTestClient(t, fb)

	ctx := requestinfo.WithRequestID(context.Background(), "req-9")
	q := ports.ListQuery{Page: 3, PerPage: 2, Sort: []string{"startDate,asc"}}.
		Where("title", ports.OpContains, "onam")
	res, err := c.ListEvents(ctx, "tenant_a", q)
	require.NoError(t, err)

	assert.Len(t, res.Items, 2)
	assert.EqualValues(t, 42, res.Total)
	assert.Equal(t, 21, res.TotalPages())

	require.NotNil(t, got)
	assert.Equal(t, "/api/event-details", got.URL.Path)
	qs := got.URL.Query()
	assert.Equal(t, "2", qs.Get("page"))
	assert.Equal(t, "2", qs.Get("size"))
	assert.Equal(t, "startDate,asc", qs.Get("sort"))
	assert.Equal(t, "onam", qs.Get("title.contains"))
	assert.Equal(t, "tenant_a", qs.Get("tenantId.equals"))
	assert.Equal(t, "tenant_a", got.Header.Get("X-Tenant-ID"))
	assert.Equal(t, "req-9", got.Header.Get("X-Request-ID"))
	assert.Equal(t, "Bearer "+fb.token, got.Header.Get("Authorization"))
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "3")
	}
	c := newTestClient(t, fb)

	for i := 0; i < 3; i++ {
		n, err := c.CountEvents(context.Background(), "tenant_a", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	}
	assert.EqualValues(t, 1, fb.logins.Load())
}

func TestExpiredTokenTriggersLogin(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(10*time.Second))}
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0")
	}
	c := newTestClient(t, fb)

	_, err := c.CountEvents(context.Background(), "tenant_a", nil)
	require.NoError(t, err)
	_, err = c.CountEvents(context.Background(), "tenant_a", nil)
	require.NoError(t, err)

	// exp is inside the reuse leeway, so every call logs in.
	assert.EqualValues(t, 2, fb.logins.Load())
}

func TestUnauthorizedRetriesOnce(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var calls atomic.Int32
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.EventDetails{ID: 7, Title: "Christmas"})
	}
	c := newTestClient(t, fb)

	ev, err := c.GetEvent(context.Background(), "tenant_a", 7)
	require.NoError(t, err)
	assert.Equal(t, "Christmas", ev.Title)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 2, fb.logins.Load())
}

func TestUnauthorizedTwiceIsUpstream(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var calls atomic.Int32
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}
	c := newTestClient(t, fb)

	_, err := c.GetEvent(context.Background(), "tenant_a", 7)
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.False(t, domain.IsUnauthorized(err))
	assert.EqualValues(t, 2, calls.Load())
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		check  func(error) bool
	}{
		{http.StatusBadRequest, `{"title":"Bad","fieldErrors":[{"field":"title","message":"NotNull"}]}`, domain.IsValidationError},
		{http.StatusForbidden, `{}`, domain.IsForbidden},
		{http.StatusNotFound, `{"detail":"no event"}`, domain.IsNotFound},
		{http.StatusConflict, `{"title":"exists"}`, domain.IsConflict},
		{http.StatusInternalServerError, `oops`, domain.IsUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
			fb.h = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}
			c := newTestClient(t, fb)

			_, err := c.GetEvent(context.Background(), "tenant_a", 1)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error %v", err)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	fb.h = func(w http.ResponseWriter, r *http.Request) {}
	srv := httptest.NewServer(fb)
	apiBase := srv.URL + "/api"
	c := NewWithHTTPClient(apiBase, NewTokenSource(apiBase, "svc", "pw", srv.Client()), srv.Client(), logger.Discard())
	srv.Close()

	_, err := c.GetEvent(context.Background(), "tenant_a", 1)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestPatchEventUsesMergePatch(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var contentType string
	var payload map[string]any
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(domain.EventDetails{ID: 5, Title: "x", IsActive: false})
	}
	c := newTestClient(t, fb)

	_, err := c.PatchEvent(context.Background(), "tenant_a", 5, map[string]any{"isActive": false})
	require.NoError(t, err)
	assert.Equal(t, "application/merge-patch+json", contentType)
	assert.EqualValues(t, 5, payload["id"])
	assert.Equal(t, false, payload["isActive"])
}

func TestCreateEventStampsTenant(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var sent domain.EventDetails
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&sent)
		sent.ID = 11
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sent)
	}
	c := newTestClient(t, fb)

	out, err := c.CreateEvent(context.Background(), "tenant_a", &domain.EventDetails{Title: "Picnic", StartDate: "2026-06-01", EndDate: "2026-06-01"})
	require.NoError(t, err)
	assert.EqualValues(t, 11, out.ID)
	assert.Equal(t, "tenant_a", sent.TenantID)
}

func TestUploadMediaMultipart(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	fields := map[string]string{}
	var fileBody, fileName string
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/event-medias/upload", r.URL.Path)
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			b, _ := io.ReadAll(p)
			if p.FormName() == "file" {
				fileBody = string(b)
				fileName = p.FileName()
				continue
			}
			fields[p.FormName()] = string(b)
		}
		_ = json.NewEncoder(w).Encode(domain.EventMedia{ID: 3, EventID: 9, Title: "Flyer"})
	}
	c := newTestClient(t, fb)

	out, err := c.UploadMedia(context.Background(), "tenant_a", ports.MediaUpload{
		EventID:     9,
		Title:       "Flyer",
		FileName:    "flyer.png",
		ContentType: "image/png",
		IsPublic:    true,
		EventFlyer:  true,
		Content:     strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.ID)
	assert.Equal(t, "png-bytes", fileBody)
	assert.Equal(t, "flyer.png", fileName)
	assert.Equal(t, "9", fields["eventId"])
	assert.Equal(t, "tenant_a", fields["tenantId"])
	assert.Equal(t, "true", fields["eventFlyer"])
}

func TestGetSettingsNotFound(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tenant_b", r.URL.Query().Get("tenantId.equals"))
		_, _ = io.WriteString(w, "[]")
	}
	c := newTestClient(t, fb)

	_, err := c.GetSettings(context.Background(), "tenant_b")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSaveSettingsCreateThenUpdate(t *testing.T) {
	fb := &fakeBackend{token: signedToken(t, time.Now().Add(time.Hour))}
	var methods []string
	fb.h = func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		var s domain.TenantSettings
		_ = json.NewDecoder(r.Body).Decode(&s)
		s.ID = 4
		_ = json.NewEncoder(w).Encode(s)
	}
	c := newTestClient(t, fb)

	saved, err := c.SaveSettings(context.Background(), &domain.TenantSettings{TenantID: "tenant_a"})
	require.NoError(t, err)
	_, err = c.SaveSettings(context.Background(), saved)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/tenant-settings", "PUT /api/tenant-settings/4"}, methods)
}
