// Package observability persists HTTP request logs to SQLite and manages
// their retention. Writes never propagate errors to the request path; a
// failing log store must not take the service down with it.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/tabbadge/dbopen"
	"github.com/hazyhaar/tabbadge/idgen"
)

// RequestRecord is one served HTTP request.
type RequestRecord struct {
	RequestID  string
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	RemoteAddr string
	UserAgent  string
}

// RequestLogger writes request records to the log database.
type RequestLogger struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// RequestLoggerOption configures a RequestLogger.
type RequestLoggerOption func(*RequestLogger)

// WithIDGenerator sets a custom generator for fallback request IDs.
func WithIDGenerator(gen idgen.Generator) RequestLoggerOption {
	return func(l *RequestLogger) { l.newID = gen }
}

// WithLogger sets the slog logger used to report write failures.
func WithLogger(logger *slog.Logger) RequestLoggerOption {
	return func(l *RequestLogger) { l.logger = logger }
}

// NewRequestLogger creates a logger backed by the given database. The
// database must carry Schema.
func NewRequestLogger(db *sql.DB, opts ...RequestLoggerOption) *RequestLogger {
	l := &RequestLogger{
		db:    db,
		newID: idgen.Prefixed("req_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Log records a request. Errors are logged but do not propagate.
func (l *RequestLogger) Log(ctx context.Context, rec RequestRecord) {
	if rec.RequestID == "" {
		rec.RequestID = l.newID()
	}
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO http_request_logs (
			request_id, method, path, status, duration_ms,
			remote_addr, user_agent, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		rec.RequestID, rec.Method, rec.Path, rec.Status, rec.Duration.Milliseconds(),
		rec.RemoteAddr, rec.UserAgent, time.Now().Unix())
	if err != nil {
		l.logger.Error("request log write failed", "error", err, "path", rec.Path)
	}
}

// Middleware returns chi-compatible middleware that records every request
// after it is served. It picks up the request ID set by chi's RequestID
// middleware when present.
func (l *RequestLogger) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			l.Log(r.Context(), RequestRecord{
				RequestID:  chimw.GetReqID(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     ww.Status(),
				Duration:   time.Since(start),
				RemoteAddr: r.RemoteAddr,
				UserAgent:  r.UserAgent(),
			})
		})
	}
}

// Cleanup deletes request logs older than retentionDays and returns the
// number of rows removed. retentionDays <= 0 is a no-op.
func Cleanup(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Unix() - int64(retentionDays)*86400
	res, err := dbopen.Exec(ctx, db,
		`DELETE FROM http_request_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("observability: cleanup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("observability: cleanup rows: %w", err)
	}
	return n, nil
}
