package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/cache"
	"github.com/syariahos/syariahos-api/internal/config"
)

func newUpstream(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/surah":
			_, _ = w.Write([]byte(`{"code":200,"data":[{"number":1,"englishName":"Al-Faatiha"}]}`))
		case "/surah/1":
			_, _ = w.Write([]byte(`{"code":200,"data":{"number":1,"numberOfAyahs":7}}`))
		case "/books":
			_, _ = w.Write([]byte(`{"code":200,"data":[{"id":"bukhari","available":7008}]}`))
		case "/books/bukhari/1":
			_, _ = w.Write([]byte(`{"code":200,"data":{"name":"HR. Bukhari","contents":{"number":1}}}`))
		case "/books/muslim/1":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srvURL string) *Client {
	return NewClient(config.ReferenceConfig{
		QuranBaseURL:  srvURL,
		HadithBaseURL: srvURL,
		CacheTTL:      time.Hour,
		Timeout:       time.Second,
	}, cache.NewTiered(nil, "", nil))
}

func TestClient_CachesExtractedData(t *testing.T) {
	var hits int32
	srv := newUpstream(t, &hits)
	client := newClient(srv.URL)
	ctx := context.Background()

	first, err := client.Surahs(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"number":1,"englishName":"Al-Faatiha"}]`, string(first))

	second, err := client.Surahs(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	surah, err := client.Surah(ctx, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number":1,"numberOfAyahs":7}`, string(surah))

	hadith, err := client.Hadith(ctx, "Bukhari", 1)
	require.NoError(t, err)
	assert.Contains(t, string(hadith), "HR. Bukhari")
}

func TestClient_RejectsBeforeFetching(t *testing.T) {
	var hits int32
	srv := newUpstream(t, &hits)
	client := newClient(srv.URL)
	ctx := context.Background()

	_, err := client.Hadith(ctx, "not-a-real-book", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = client.Hadith(ctx, "../admin", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = client.Surah(ctx, 115)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = client.Surah(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, atomic.LoadInt32(&hits))
}

func TestClient_UpstreamFailures(t *testing.T) {
	var hits int32
	srv := newUpstream(t, &hits)
	client := newClient(srv.URL)
	ctx := context.Background()

	_, err := client.Hadith(ctx, "muslim", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = client.Hadith(ctx, "bukhari", 99999)
	assert.ErrorIs(t, err, ErrNotFound)

	srv.Close()
	_, err = client.Books(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
