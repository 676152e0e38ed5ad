package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/store"
	"github.com/sky-flux/flashcards/wanikani"
)

var user = uuid.MustParse("11111111-2222-3333-4444-555555555555")

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *store.DB
	starts  atomic.Int32
}

func setupTestServer(t *testing.T, auth AuthConfig) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := store.Open(store.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ts := &testServer{t: t, db: db}
	wk := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.starts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":500,"object":"assignment","data":{"subject_id":1,"srs_stage":1}}`)
	}))
	t.Cleanup(wk.Close)

	provider := wanikani.NewProvider(db, wanikani.ProviderConfig{
		Client: wanikani.NewClient(wanikani.ClientConfig{BaseURL: wk.URL, RequestsPerMinute: 6000}),
		Logger: logger,
	})
	svc := deck.NewService(db, deck.Config{Provider: provider, Logger: logger})
	ts.handler = NewRouter(Config{Store: db, Service: svc, Provider: provider, Auth: auth, Logger: logger})
	return ts
}

// do sends a request as user and returns the recorded response.
func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(DefaultUserHeader, user.String())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// data decodes the {"data": ...} envelope of a successful response.
func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func (ts *testServer) create(path, body string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, APIPrefix+path, body)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return data[IDResponse](ts.t, rec).ID
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	req := httptest.NewRequest(http.MethodGet, APIPrefix+"/sources", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set(DefaultUserHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, APIPrefix+"/sources", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestMockAuthentication(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{Mock: true})
	req := httptest.NewRequest(http.MethodGet, APIPrefix+"/decks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer "+MockToken)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

const customBody = `{
	"type": "custom",
	"name": "Words",
	"groups": [
		{"iid": 1, "cards": [{"front": "one", "back": "いち"}]},
		{"iid": 2, "cards": [{"front": "two", "back": "に"}]}
	]
}`

func TestCustomSourceFlow(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	src := ts.create("/sources", customBody)
	deckID := ts.create("/decks", `{"name": "Japanese", "source_ids": ["`+src+`"]}`)

	rec := ts.do(http.MethodGet, APIPrefix+"/decks/"+deckID+"/lessons", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lessons := data[deck.Lessons](t, rec)
	assert.Equal(t, 2, lessons.Total)
	require.Len(t, lessons.Items, 2)
	assert.Equal(t, "Words", lessons.Items[0].Source.Name)

	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+deckID+"/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	// Finish the lesson of group 1 through the deck.
	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit",
		`{"mode": "lesson", "source": {"id": "`+src+`", "type": "custom"}, "iid": 1, "times_incorrect": [3]}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// A clean direct review moves group 2 out of lessons.
	rec = ts.do(http.MethodPost, APIPrefix+"/sources/"+src+"/2", `{"times_incorrect": [0]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"srs_stage":1`)

	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+deckID+"/overview", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ov := data[deck.Overview](t, rec)
	assert.Equal(t, "Japanese", ov.Name)
	assert.Equal(t, 0, ov.Lessons)
	assert.Equal(t, 0, ov.Reviews)
	if assert.NotEmpty(t, ov.Forecast) {
		assert.Equal(t, 2, ov.Forecast[len(ov.Forecast)-1].Total)
	}

	rec = ts.do(http.MethodGet, APIPrefix+"/sources/"+src, "")
	require.Equal(t, http.StatusOK, rec.Code)
	src1, err := deck.DecodeSource(data[json.RawMessage](t, rec))
	require.NoError(t, err)
	groups := src1.(deck.CustomSource).Groups
	assert.Equal(t, 1, groups[0].Stage, "lessons submit zero mistakes")
	assert.Equal(t, 1, groups[1].Stage)
}

func TestSourceErrors(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	src := ts.create("/sources", customBody)

	tests := []struct {
		name         string
		method, path string
		body         string
		want         int
	}{
		{"missing name", http.MethodPost, "/sources", `{"type": "custom"}`, http.StatusBadRequest},
		{"bad type", http.MethodPost, "/sources", `{"type": "paper", "name": "x"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/sources", `{`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/sources/nope", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/sources/" + uuid.NewString(), "", http.StatusNotFound},
		{"type mismatch", http.MethodPut, "/sources/" + src, `{"type": "wanikani", "name": "x"}`, http.StatusBadRequest},
		{"unknown iid", http.MethodPost, "/sources/" + src + "/99", `{"times_incorrect": [0]}`, http.StatusNotFound},
		{"bad iid", http.MethodPost, "/sources/" + src + "/x", `{"times_incorrect": [0]}`, http.StatusBadRequest},
		{"negative count", http.MethodPost, "/sources/" + src + "/1", `{"times_incorrect": [-1]}`, http.StatusBadRequest},
		{"reorder unknown", http.MethodPut, "/sources", `["` + uuid.NewString() + `"]`, http.StatusBadRequest},
		{"cache on custom", http.MethodPut, "/sources/" + src + "/cache", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, APIPrefix+tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestDeckCRUD(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	a := ts.create("/sources", customBody)
	b := ts.create("/sources", `{"type": "wanikani", "name": "WK"}`)
	d1 := ts.create("/decks", `{"name": "One", "source_ids": ["`+a+`"]}`)
	d2 := ts.create("/decks", `{"name": "Two"}`)

	rec := ts.do(http.MethodPut, APIPrefix+"/decks", `["`+d2+`", "`+d1+`"]`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPut, APIPrefix+"/decks/"+d1, `{"name": "Uno", "source_ids": ["`+b+`", "`+a+`"]}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, APIPrefix+"/decks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decks := data[[]deck.Deck](t, rec)
	require.Len(t, decks, 2)
	assert.Equal(t, "Two", decks[0].Name)
	assert.Equal(t, "Uno", decks[1].Name)
	assert.Equal(t, []uuid.UUID{uuid.MustParse(b), uuid.MustParse(a)}, decks[1].Sources)

	rec = ts.do(http.MethodPut, APIPrefix+"/decks/"+d2, `{"source_ids": ["`+uuid.NewString()+`"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, APIPrefix+"/decks/"+d2, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+d2, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, APIPrefix+"/sources/"+a, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+d1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{uuid.MustParse(b)}, data[deck.Deck](t, rec).Sources)
}

func TestWanikaniLessonFlow(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	src := ts.create("/sources", `{"type": "wanikani", "name": "WK"}`)
	deckID := ts.create("/decks", `{"name": "WK", "source_ids": ["`+src+`"]}`)

	cache := wanikani.NewAccount()
	cache.Subjects[1] = wanikani.Object[wanikani.Subject]{ID: 1, Object: wanikani.TypeRadical, Data: wanikani.Subject{
		Level:    1,
		Slug:     "ground",
		Meanings: []wanikani.Meaning{{Meaning: "Ground", Primary: true, AcceptedAnswer: true}},
	}}
	cache.PutAssignment(wanikani.Object[wanikani.Assignment]{ID: 500, Object: "assignment", Data: wanikani.Assignment{SubjectID: 1}})
	blob, err := cache.Encode()
	require.NoError(t, err)

	rec := ts.do(http.MethodPut, APIPrefix+"/sources/"+src+"/cache", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPut, APIPrefix+"/sources/"+src+"/cache", string(blob))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+deckID+"/lessons", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lessons := data[deck.Lessons](t, rec)
	require.Equal(t, 1, lessons.Total)
	assert.Equal(t, int64(500), lessons.Items[0].Group.IID)
	assert.Equal(t, "ground", lessons.Items[0].Group.Cards[0].Front)

	submit := `{"mode": "lesson", "source": {"id": "` + src + `", "type": "wanikani"}, "iid": 500, "times_incorrect": [0]}`
	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit", submit)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no API key yet")
	assert.Equal(t, int32(0), ts.starts.Load())

	rec = ts.do(http.MethodPut, APIPrefix+"/sources/"+src, `{"type": "wanikani", "api_key": "secret"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	// A new key drops the cache, so import it again.
	rec = ts.do(http.MethodPut, APIPrefix+"/sources/"+src+"/cache", string(blob))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit", submit)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), ts.starts.Load())

	rec = ts.do(http.MethodGet, APIPrefix+"/decks/"+deckID+"/lessons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, data[deck.Lessons](t, rec).Total)
}

func TestSubmitValidation(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	src := ts.create("/sources", customBody)
	other := ts.create("/sources", customBody)
	deckID := ts.create("/decks", `{"name": "D", "source_ids": ["`+src+`"]}`)

	rec := ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit",
		`{"mode": "cram", "source": {"id": "`+src+`", "type": "custom"}, "iid": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit",
		`{"source": {"id": "`+other+`", "type": "custom"}, "iid": 1, "times_incorrect": [0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+uuid.NewString()+"/submit",
		`{"source": {"id": "`+src+`", "type": "custom"}, "iid": 1, "times_incorrect": [0]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitRoutesByStoredSourceType(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	src := ts.create("/sources", customBody)
	deckID := ts.create("/decks", `{"name": "D", "source_ids": ["`+src+`"]}`)

	rec := ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit",
		`{"mode": "lesson", "source": {"id": "`+src+`"}, "iid": 1, "times_incorrect": [0]}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, APIPrefix+"/decks/"+deckID+"/submit",
		`{"mode": "lesson", "source": {"id": "`+src+`", "type": "wanikani"}, "iid": 2, "times_incorrect": [0]}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Zero(t, ts.starts.Load(), "custom groups never reach the provider")

	rec = ts.do(http.MethodGet, APIPrefix+"/sources/"+src, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := deck.DecodeSource(data[json.RawMessage](t, rec))
	require.NoError(t, err)
	groups := got.(deck.CustomSource).Groups
	assert.Equal(t, 1, groups[0].Stage)
	assert.Equal(t, 1, groups[1].Stage)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", seen)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t, AuthConfig{})
	rec := ts.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
