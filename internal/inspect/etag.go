package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Registry views only change when a module loads or unloads, so clients
// revalidate with If-None-Match instead of refetching.
const cacheControl = "no-cache"

// GenerateETag returns a strong ETag for content.
func GenerateETag(content []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(content))
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags.
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		weak := strings.HasPrefix(part, "W/")
		tag := strings.TrimPrefix(part, "W/")
		if len(tag) < 2 || tag[0] != '"' || tag[len(tag)-1] != '"' {
			continue
		}
		if weak {
			tag = "W/" + tag
		}
		etags = append(etags, tag)
	}
	return etags
}

// MatchesETag reports whether etag matches any of etags using weak
// comparison.
func MatchesETag(etag string, etags []string) bool {
	if len(etags) == 1 && etags[0] == "*" {
		return true
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, e := range etags {
		if strings.TrimPrefix(e, "W/") == etag {
			return true
		}
	}
	return false
}

// writeJSON encodes v, tags it with an ETag and answers 304 when the client
// already holds the same representation.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		writeError(w, r, fmt.Errorf("failed to encode response: %w", err))
		return
	}

	etag := GenerateETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cacheControl)
	if MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match"))) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
