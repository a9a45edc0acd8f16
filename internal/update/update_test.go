package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckNewerRelease(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v1.2.0","html_url":"https://example.com/r/1.2.0"}`)

	res, err := Checker{URL: srv.URL}.Check(context.Background(), "v1.1.0")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "1.2.0", res.LatestVersion)
	assert.Equal(t, "https://example.com/r/1.2.0", res.URL)
}

func TestCheckUpToDate(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v1.1.0"}`)

	res, err := Checker{URL: srv.URL}.Check(context.Background(), "1.1.0")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCheckBadStatus(t *testing.T) {
	srv := releaseServer(t, http.StatusNotFound, `{}`)

	_, err := Checker{URL: srv.URL}.Check(context.Background(), "1.0.0")
	assert.ErrorContains(t, err, "status 404")
}
