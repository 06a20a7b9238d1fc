package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/printshop-backend/api/responses"
	"github.com/angelmondragon/printshop-backend/api/validators"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/printshop-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyHeader     = "Idempotency-Key"
	replayedHeader        = "Idempotent-Replayed"
	maxIdempotencyKeyLen  = 255
)

// A reservation that outlives pendingTTL is assumed abandoned by a crashed
// request and may be taken over.
const pendingTTL = 2 * time.Minute

const (
	recordPending   = "pending"
	recordCompleted = "completed"
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
}

// Admin configuration writes are replay-safe. Storefront quotes are reads and
// skip the store entirely.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchPrefix("/api/admin/v1/")},
	{method: http.MethodPut, matcher: matchPrefix("/api/admin/v1/")},
	{method: http.MethodDelete, matcher: matchPrefix("/api/admin/v1/")},
}

// Writes that only compute a report are exempt.
var idempotencyExemptions = []routeMatcher{
	matchSuffix("/validate"),
}

var errIdempotencyRace = errors.New("idempotency record vanished between reservation and read")

type idempotencyRecord struct {
	State       string            `json:"state"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency makes admin writes safe to retry. The first request carrying an
// Idempotency-Key reserves it, runs, and stores its response; later requests
// with the same key and body replay that response. A concurrent duplicate is
// rejected while the first is still running, and 5xx outcomes release the key
// so the client can retry. A nil store disables the middleware and a
// non-positive ttl falls back to 24h.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !requiresIdempotency(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idempotencyKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if len(idempotencyKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long").
					WithDetails(map[string]any{"max_length": maxIdempotencyKeyLen}))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
						WithDetails(map[string]any{"limit": validators.MaxBodyBytes}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)
			ctx = logger.WithIdempotencyKey(ctx, idempotencyKey)

			reserved, existing, err := reserve(ctx, store, key, requestHash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if !reserved {
				replayOrReject(ctx, logg, w, existing, requestHash)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))
			status := defaultStatus(rec.status)

			if status >= http.StatusInternalServerError {
				if delErr := store.Del(ctx, key); delErr != nil {
					logError(ctx, logg, "release idempotency reservation", delErr)
				}
				return
			}

			record := idempotencyRecord{
				State:       recordCompleted,
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(ctx, logg, "marshal idempotency record", marshalErr)
				return
			}
			if setErr := store.Set(ctx, key, string(payload), ttl); setErr != nil {
				logError(ctx, logg, "persist idempotency record", setErr)
			}
		})
	}
}

// reserve claims key with a pending record. When the key is already held it
// returns the stored record instead. A record that expires between the
// failed claim and the read is retried once.
func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string) (bool, *idempotencyRecord, error) {
	pending, err := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: requestHash})
	if err != nil {
		return false, nil, err
	}
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := store.SetNX(ctx, key, string(pending), pendingTTL)
		if err != nil {
			return false, nil, err
		}
		if ok {
			return true, nil, nil
		}
		stored, err := store.Get(ctx, key)
		if pkgredis.IsNil(err) {
			continue
		}
		if err != nil {
			return false, nil, err
		}
		record, err := decodeRecord(stored)
		if err != nil {
			return false, nil, err
		}
		return false, record, nil
	}
	return false, nil, errIdempotencyRace
}

func replayOrReject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, record *idempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.State != recordCompleted {
		w.Header().Set("Retry-After", "1")
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress").
			WithDetails(map[string]any{"state": recordPending}))
		return
	}
	writeStoredResponse(w, record)
}

func buildScope(r *http.Request) string {
	return r.Method + "|" + r.URL.Path
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func requiresIdempotency(method, path string) bool {
	if path == "" {
		return false
	}
	for _, exempt := range idempotencyExemptions {
		if exempt(path) {
			return false
		}
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(path) {
			return true
		}
	}
	return false
}

func matchPrefix(prefix string) routeMatcher {
	return func(path string) bool {
		return strings.HasPrefix(path, prefix)
	}
}

func matchSuffix(suffix string) routeMatcher {
	return func(path string) bool {
		return strings.HasSuffix(path, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
