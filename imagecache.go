package battlemat

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	_ "golang.org/x/image/webp"
)

// defaultCacheSize bounds the texture cache; least-recently-used entries
// are evicted and their GPU memory released.
const defaultCacheSize = 64

// LoadState describes where a URL is in the load lifecycle.
type LoadState uint8

const (
	LoadIdle    LoadState = iota // never requested
	LoadPending                  // fetch in flight
	LoadReady                    // decoded and cached
	LoadFailed                   // fetch or decode failed
)

// loadResult is delivered from a loader goroutine to the update thread.
// The decoded image is converted to a GPU texture only on commit.
type loadResult struct {
	url string
	img image.Image
	err error
}

// ImageCache is a bounded, URL-keyed texture cache with asynchronous
// loading. Loads run on goroutines and are de-duplicated per URL; results
// are delivered over a channel and committed single-threaded by Drain,
// which is the only place shared state mutates (see the concurrency notes
// in the package docs). Supported formats: PNG, JPEG, WebP.
type ImageCache struct {
	cache   *lru.Cache[string, *ebiten.Image]
	group   singleflight.Group
	loading map[string]bool
	failed  map[string]bool
	results chan loadResult

	// fetch retrieves and decodes a URL. Replaceable in tests.
	fetch func(url string) (image.Image, error)
}

// NewImageCache creates a cache bounded to capacity entries; non-positive
// capacities use the default. Evicted textures are deallocated.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	c, _ := lru.NewWithEvict(capacity, func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	})
	return &ImageCache{
		cache:   c,
		loading: make(map[string]bool),
		failed:  make(map[string]bool),
		results: make(chan loadResult, 16),
		fetch:   fetchImage,
	}
}

// Image returns the cached texture for url and its load state. A LoadReady
// result refreshes the entry's recency.
func (ic *ImageCache) Image(url string) (*ebiten.Image, LoadState) {
	if url == "" {
		return nil, LoadIdle
	}
	if img, ok := ic.cache.Get(url); ok {
		return img, LoadReady
	}
	if ic.loading[url] {
		return nil, LoadPending
	}
	if ic.failed[url] {
		return nil, LoadFailed
	}
	return nil, LoadIdle
}

// Request starts an asynchronous load for url unless it is already cached,
// in flight, or known-failed. Returns the current state.
func (ic *ImageCache) Request(url string) LoadState {
	if url == "" {
		return LoadIdle
	}
	if _, state := ic.Image(url); state != LoadIdle {
		return state
	}

	ic.loading[url] = true
	go func() {
		// Concurrent requests for the same URL share one fetch.
		v, err, _ := ic.group.Do(url, func() (any, error) {
			return ic.fetch(url)
		})
		var img image.Image
		if err == nil {
			img = v.(image.Image)
		}
		ic.results <- loadResult{url: url, img: img, err: err}
	}()
	return LoadPending
}

// Drain commits completed loads. It must run on the update thread; texture
// creation and state mutation happen here, never on loader goroutines.
// onDone is called per settled URL (nil allowed). Returns the number of
// results processed.
func (ic *ImageCache) Drain(onDone func(url string, ok bool)) int {
	n := 0
	for {
		select {
		case res := <-ic.results:
			delete(ic.loading, res.url)
			ok := res.err == nil
			if ok {
				ic.cache.Add(res.url, ebiten.NewImageFromImage(res.img))
				delete(ic.failed, res.url)
			} else {
				ic.failed[res.url] = true
			}
			if onDone != nil {
				onDone(res.url, ok)
			}
			n++
		default:
			return n
		}
	}
}

// Forget drops a URL's cached texture and failure record so a later
// Request retries the load.
func (ic *ImageCache) Forget(url string) {
	ic.cache.Remove(url)
	delete(ic.failed, url)
}

// Len returns the number of cached textures.
func (ic *ImageCache) Len() int {
	return ic.cache.Len()
}

// fetchImage retrieves url (http(s) or local path) and decodes it.
func fetchImage(url string) (image.Image, error) {
	var r io.ReadCloser
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(url)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", url, err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
