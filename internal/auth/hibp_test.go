package auth

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepcycle/internal"
)

func newTestPwnedClient(t *testing.T, handler http.HandlerFunc) (*PwnedClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewPwnedClient("sleepcycle-test/1.0", internal.NewNopLogger())
	c.baseURL = srv.URL + "/range/%s"
	return c, srv
}

func TestPwnedClient_MatchesSuffixLocally(t *testing.T) {
	password := "password123"
	sum := sha1.Sum([]byte(password))
	digest := fmt.Sprintf("%X", sum)
	suffix := digest[5:]

	var requestedPath string
	c, _ := newTestPwnedClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\n%s:86453\r\nFFFFFF0000000000000000000000000000F:1\r\n", suffix)
	})

	breached, err := c.IsBreached(context.Background(), password)
	require.NoError(t, err)
	assert.True(t, breached)
	// Only the 5-char prefix ever reaches the service.
	assert.Equal(t, "/range/"+digest[:5], requestedPath)
}

func TestPwnedClient_NoMatch(t *testing.T) {
	c, _ := newTestPwnedClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:3\r\n")
	})
	breached, err := c.IsBreached(context.Background(), "unlisted passphrase 7")
	require.NoError(t, err)
	assert.False(t, breached)
}

func TestPwnedClient_ServiceErrorSurfaces(t *testing.T) {
	c, srv := newTestPwnedClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.IsBreached(context.Background(), "whatever pass 1")
	assert.Error(t, err)

	srv.Close()
	_, err = c.IsBreached(context.Background(), "whatever pass 1")
	assert.Error(t, err)
}
