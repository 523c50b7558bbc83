package upstream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SendsHeadersAndQuery(t *testing.T) {
	var gotAuth, gotCookie, gotQuery, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCookie = r.Header.Get("Cookie")
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	resp, err := c.Do(t.Context(), http.MethodGet, "/boards", nil, Options{
		Authorization: "Bearer tok-1",
		Cookie:        "refreshToken=rt-1",
		Query:         url.Values{"page": {"2"}, "size": {"5"}},
	})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "refreshToken=rt-1", gotCookie)
	assert.Equal(t, "page=2&size=5", gotQuery)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDo_EncodesBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	resp, err := c.Do(t.Context(), http.MethodPost, "/boards",
		map[string]string{"title": "hi"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"title":"hi"}`, gotBody)
}

func TestDo_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	resp, err := c.Do(t.Context(), http.MethodGet, "/boards/999", nil, Options{})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", resp.Message("fallback"))
}

func TestDo_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Do(t.Context(), http.MethodGet, "/boards", nil, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 2*time.Second)
	_, err := c.Do(t.Context(), http.MethodGet, "/boards", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "/boards", gotPath)
}

func TestResponse_Helpers(t *testing.T) {
	r := &Response{StatusCode: 204, Body: []byte("  \n")}
	assert.True(t, r.IsEmpty())
	assert.True(t, r.OK())
	assert.Nil(t, r.JSON())
	assert.Equal(t, "fallback", r.Message("fallback"))
	assert.Equal(t, "CODE", r.Code("CODE"))

	r = &Response{StatusCode: 403, Body: []byte(`{"error":"forbidden","code":"FORBIDDEN"}`)}
	assert.False(t, r.IsEmpty())
	assert.False(t, r.OK())
	assert.Equal(t, "forbidden", r.Message("fallback"))
	assert.Equal(t, "FORBIDDEN", r.Code("fallback"))

	r = &Response{StatusCode: 400, Body: []byte(`{"message":"msg wins","error":"not this"}`)}
	assert.Equal(t, "msg wins", r.Message("fallback"))

	var decoded struct {
		Message string `json:"message"`
	}
	require.NoError(t, r.Decode(&decoded))
	assert.Equal(t, "msg wins", decoded.Message)
}
