package ownerportal

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseUrl string, opts ClientOptions) *Client {
	t.Helper()

	opts.Domain = "testing"
	opts.BaseUrl = baseUrl
	client, err := NewClient(context.Background(), opts)
	require.NoError(t, err)

	// no pacing in tests
	client.pageDelay = func(ctx context.Context) error { return nil }
	return client
}

func TestCookieStoreLastWriteWins(t *testing.T) {
	testCases := []struct {
		name      string
		setCookie []string
		header    string
	}{
		{
			name:      "single cookie",
			setCookie: []string{"TrackOwner=abc; Path=/; HttpOnly"},
			header:    "TrackOwner=abc",
		},
		{
			name: "same name replaced in place",
			setCookie: []string{
				"TrackOwner=abc; Path=/",
				"laravel_session=xyz",
				"TrackOwner=def; Path=/",
			},
			header: "TrackOwner=def; laravel_session=xyz",
		},
		{
			name: "repeated identical values are idempotent",
			setCookie: []string{
				"a=1", "a=1", "a=1",
			},
			header: "a=1",
		},
		{
			name: "unrelated names keep insertion order",
			setCookie: []string{
				"b=2", "a=1", "c=3", "b=9",
			},
			header: "b=9; a=1; c=3",
		},
		{
			name:      "malformed pair without equals is dropped",
			setCookie: []string{"garbage", "a=1"},
			header:    "a=1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newCookieStore()
			for _, sc := range tc.setCookie {
				store.apply(sc)
			}
			require.Equal(t, tc.header, store.header())
		})
	}
}

func TestRequestAccumulatesCookies(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		switch r.URL.Path {
		case "/first":
			w.Header().Add("Set-Cookie", "TrackOwner=abc; Path=/; HttpOnly")
			w.Header().Add("Set-Cookie", "laravel_session=s1; Path=/")
		case "/second":
			w.Header().Add("Set-Cookie", "laravel_session=s2; Path=/")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	ctx := context.Background()

	_, err := client.get(ctx, "/first", nil, nil)
	require.NoError(t, err)
	require.Empty(t, gotCookie)

	_, err = client.get(ctx, "/second", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "TrackOwner=abc; laravel_session=s1", gotCookie)

	_, err = client.get(ctx, "/third", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "TrackOwner=abc; laravel_session=s2", gotCookie)
}

// a cookie reaches the wire exactly once per name, through the
// client's own store; a transport-level jar must never add a second
// Cookie header of its own
func TestRequestSendsEachCookieOnce(t *testing.T) {
	var gotCookies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = r.Header.Values("Cookie")
		w.Header().Add("Set-Cookie", "TrackOwner=abc; Path=/; HttpOnly")
		w.Header().Add("Set-Cookie", "laravel_session=s1; Path=/")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.get(ctx, "/", nil, nil)
		require.NoError(t, err)
	}

	require.Len(t, gotCookies, 1)
	require.Equal(t, "TrackOwner=abc; laravel_session=s1", gotCookies[0])
	require.Equal(t, 1, strings.Count(gotCookies[0], "TrackOwner"))
	require.Equal(t, 1, strings.Count(gotCookies[0], "laravel_session"))
}

func TestSessionCookieOptionSeedsStore(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{
		SessionCookie: "TrackOwner=xyz",
	})
	require.True(t, client.HasSession())

	_, err := client.get(context.Background(), "/", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "TrackOwner=xyz", gotCookie)
}

func TestEnvelopeJSONOrText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": true}`))
		default:
			w.Write([]byte(`<html><body>hello</body></html>`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	ctx := context.Background()

	res, err := client.get(ctx, "/json", nil, nil)
	require.NoError(t, err)
	require.True(t, res.IsJSON())
	require.JSONEq(t, `{"success": true}`, string(res.JSON))
	require.Empty(t, res.Text)

	res, err = client.get(ctx, "/html", nil, nil)
	require.NoError(t, err)
	require.False(t, res.IsJSON())
	require.Contains(t, res.Text, "hello")
}

func TestRequestDecompressesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(`{"compressed": true}`))
		gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	res, err := client.get(context.Background(), "/", nil, nil)
	require.NoError(t, err)
	require.True(t, res.IsJSON())
	require.JSONEq(t, `{"compressed": true}`, string(res.JSON))
}

func TestRequestBearerInjection(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	ctx := context.Background()

	_, err := client.get(ctx, "/", nil, nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)

	client.bearer = "tok123"
	_, err = client.get(ctx, "/", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok123", gotAuth)
}

// a body that does not actually decode under its declared
// Content-Encoding is a decode failure, not silent garbage
func TestRequestBrokenGzipStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write([]byte("not gzip at all"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, ClientOptions{})
	_, err := client.get(context.Background(), "/", nil, nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "gzip", decodeErr.Encoding)
}

func TestRequestNetworkError(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", ClientOptions{})

	_, err := client.get(context.Background(), "/", nil, nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestDecompressBrokenGzip(t *testing.T) {
	_, err := decompress("gzip", []byte("not gzip at all"))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "gzip", decodeErr.Encoding)
}

func TestDecompressUnknownEncodingPassesThrough(t *testing.T) {
	out, err := decompress("zstd", []byte("verbatim"))
	require.NoError(t, err)
	require.Equal(t, []byte("verbatim"), out)
}
