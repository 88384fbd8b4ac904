// Package reference proxies the Quran and Hadith reference APIs behind a
// read-through cache.
package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/cache"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/metrics"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	// SurahCount is the number of surahs in the Quran.
	SurahCount = 114

	maxResponseBytes = 8 << 20
)

var (
	// ErrNotFound is returned for unknown surahs, books or hadith numbers.
	ErrNotFound = errors.New("reference: not found")
	// ErrUnavailable is returned when an upstream API fails.
	ErrUnavailable = errors.New("reference: upstream unavailable")
)

// HadithBooks is the fixed set of book slugs that may be forwarded upstream.
var HadithBooks = []string{
	"abu-daud",
	"ahmad",
	"bukhari",
	"darimi",
	"ibnu-majah",
	"malik",
	"muslim",
	"nasai",
	"tirmidzi",
}

// IsKnownBook reports whether book is on the whitelist.
func IsKnownBook(book string) bool {
	for _, known := range HadithBooks {
		if book == known {
			return true
		}
	}
	return false
}

// Client fetches reference data and caches the extracted payloads.
type Client struct {
	quranBaseURL  string
	hadithBaseURL string
	ttl           time.Duration
	http          *http.Client
	cache         cache.Store
	group         singleflight.Group
}

// NewClient constructs a Client. A nil store disables caching.
func NewClient(cfg config.ReferenceConfig, store cache.Store) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultReferenceTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = config.DefaultReferenceCacheTTL
	}
	quran := strings.TrimRight(strings.TrimSpace(cfg.QuranBaseURL), "/")
	if quran == "" {
		quran = config.DefaultQuranBaseURL
	}
	hadith := strings.TrimRight(strings.TrimSpace(cfg.HadithBaseURL), "/")
	if hadith == "" {
		hadith = config.DefaultHadithBaseURL
	}
	return &Client{
		quranBaseURL:  quran,
		hadithBaseURL: hadith,
		ttl:           ttl,
		http:          &http.Client{Timeout: timeout},
		cache:         store,
	}
}

// Surahs lists all surahs.
func (c *Client) Surahs(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "quran:surahs", c.quranBaseURL+"/surah")
}

// Surah returns one surah with its verses.
func (c *Client) Surah(ctx context.Context, number int) (json.RawMessage, error) {
	if number < 1 || number > SurahCount {
		return nil, ErrNotFound
	}
	n := strconv.Itoa(number)
	return c.fetch(ctx, "quran:surah:"+n, c.quranBaseURL+"/surah/"+n)
}

// Books lists the upstream hadith collections.
func (c *Client) Books(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "hadith:books", c.hadithBaseURL+"/books")
}

// Hadith returns one hadith. Unknown books are rejected before any request.
func (c *Client) Hadith(ctx context.Context, book string, number int) (json.RawMessage, error) {
	book = strings.ToLower(strings.TrimSpace(book))
	if !IsKnownBook(book) || number < 1 {
		return nil, ErrNotFound
	}
	n := strconv.Itoa(number)
	return c.fetch(ctx, "hadith:"+book+":"+n, c.hadithBaseURL+"/books/"+book+"/"+n)
}

func (c *Client) fetch(ctx context.Context, key, url string) (json.RawMessage, error) {
	if c.cache != nil {
		cached, ok, errGet := c.cache.Get(ctx, key)
		if errGet != nil {
			log.WithError(errGet).WithField("key", key).Warn("reference: cache read failed")
		}
		if ok {
			metrics.ReferenceCacheTotal.WithLabelValues("hit").Inc()
			return json.RawMessage(cached), nil
		}
		metrics.ReferenceCacheTotal.WithLabelValues("miss").Inc()
	}

	value, errDo, _ := c.group.Do(key, func() (any, error) {
		data, errFetch := c.get(ctx, url)
		if errFetch != nil {
			return nil, errFetch
		}
		if c.cache != nil {
			if errSet := c.cache.Set(ctx, key, data, c.ttl); errSet != nil {
				log.WithError(errSet).WithField("key", key).Warn("reference: cache write failed")
			}
		}
		return data, nil
	})
	if errDo != nil {
		return nil, errDo
	}
	return json.RawMessage(value.([]byte)), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if errReq != nil {
		return nil, fmt.Errorf("reference: build request: %w", errReq)
	}
	req.Header.Set("Accept", "application/json")

	resp, errDo := c.http.Do(req)
	if errDo != nil {
		log.WithError(errDo).WithField("url", url).Warn("reference: request failed")
		return nil, ErrUnavailable
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("reference: close response body failed")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.WithField("url", url).Warnf("reference: unexpected status %d", resp.StatusCode)
		return nil, ErrUnavailable
	}

	body, errRead := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if errRead != nil {
		log.WithError(errRead).WithField("url", url).Warn("reference: read response failed")
		return nil, ErrUnavailable
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrUnavailable
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, ErrNotFound
	}
	return []byte(data.Raw), nil
}
