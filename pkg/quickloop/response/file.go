package response

import (
	"os"
	"strconv"
	"time"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
)

// DefaultCacheSeconds is the Cache-Control max-age spec §4.3 specifies
// for an auto-cached file response when the caller doesn't override it:
// 7 days.
const DefaultCacheSeconds = 7 * 24 * 60 * 60

// FileServeConfig carries the two compile-time knobs spec §6 names for
// static file responses.
type FileServeConfig struct {
	DisableIfModifiedSince bool
	DisableFileAutoCache   bool
	// CacheSeconds overrides the Cache-Control max-age / Expires TTL.
	// Zero means DefaultCacheSeconds, not "no caching" — use
	// DisableFileAutoCache to omit the cache headers entirely.
	CacheSeconds int
}

// ServeFile opens path and builds the response for it, honoring
// If-Modified-Since (via ifModifiedSince, the zero Time if the request
// had none) unless DisableIfModifiedSince is set, and populating
// Last-Modified/Expires/Cache-Control unless DisableFileAutoCache is set;
// Content-Length is set either way. The caller must eventually close the
// returned response's File() once the body has been streamed.
func ServeFile(path string, ifModifiedSince time.Time, cfg FileServeConfig) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if !cfg.DisableIfModifiedSince && !ifModifiedSince.IsZero() {
		// HTTP-date resolution is one second; truncate the file's mtime
		// to match before comparing, or every file would appear modified.
		if !info.ModTime().Truncate(time.Second).After(ifModifiedSince) {
			f.Close()
			return NotModified(), nil
		}
	}

	r := NewResponse(proto.StatusOK)
	if cfg.DisableFileAutoCache {
		r.Kind = BodyFile
		r.file = f
		r.size = info.Size()
		r.Headers.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	} else {
		cacheSeconds := cfg.CacheSeconds
		if cacheSeconds == 0 {
			cacheSeconds = DefaultCacheSeconds
		}
		r.SetBodyFile(f, info, cacheSeconds)
	}
	return r, nil
}
