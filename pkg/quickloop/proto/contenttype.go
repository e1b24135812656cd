package proto

// Content types for responses the server builds itself (JSON bodies),
// plus an extension lookup table for static files. Handlers are
// free to set any Content-Type string they like on their own Response;
// this table only covers what the engine emits unprompted.
const (
	ContentTypeJSON       = "application/json"
	ContentTypeHTML       = "text/html; charset=utf-8"
	ContentTypePlain      = "text/plain; charset=utf-8"
	ContentTypeOctetStream = "application/octet-stream"
)

var extToContentType = map[string]string{
	".html": ContentTypeHTML,
	".htm":  ContentTypeHTML,
	".txt":  ContentTypePlain,
	".json": ContentTypeJSON,
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
	".xml":  "application/xml",
	".wasm": "application/wasm",
}

// ContentTypeForExt returns the content type to use for a static file with
// the given extension (including the leading dot, case-sensitive on the
// table above), falling back to ContentTypeOctetStream.
func ContentTypeForExt(ext string) string {
	if ct, ok := extToContentType[ext]; ok {
		return ct
	}
	return ContentTypeOctetStream
}
