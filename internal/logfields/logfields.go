package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCategory    = "category"
	KeySubcategory = "subcategory"
	KeySlug        = "slug"
	KeyPath        = "path"
	KeyFile        = "file"
	KeyRoot        = "content_root"
	KeyCount       = "count"
	KeyUser        = "user"
	KeySession     = "session_id"
	KeyJob         = "job"
	KeyDurationMS  = "duration_ms"
	KeyMethod      = "method"
	KeyURL         = "url"
	KeyStatus      = "status"
	KeyResponseSz  = "response_size"
	KeyContentLen  = "content_length"
	KeyUserAgent   = "user_agent"
	KeyRemoteAddr  = "remote_addr"
	KeyRequestID   = "request_id"
	KeySubject     = "subject"
	KeyName        = "name"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Subcategory(s string) slog.Attr   { return slog.String(KeySubcategory, s) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func ContentRoot(r string) slog.Attr   { return slog.String(KeyRoot, r) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func User(u string) slog.Attr          { return slog.String(KeyUser, u) }
func SessionID(id string) slog.Attr    { return slog.String(KeySession, id) }
func Job(name string) slog.Attr        { return slog.String(KeyJob, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func ResponseSize(n int64) slog.Attr   { return slog.Int64(KeyResponseSz, n) }
func ContentLength(n int64) slog.Attr  { return slog.Int64(KeyContentLen, n) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Name(n string) slog.Attr          { return slog.String(KeyName, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
