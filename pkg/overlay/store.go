package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// Default overlay addressing.
const (
	DefaultContainer = "mc-link-data"
	LinksKey         = "linkDataList"
	PositionsKey     = "locationDataList"
)

// Record is one stored overlay collection.
type Record struct {
	Container    string          `json:"container"`
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	LastModified time.Time       `json:"lastModifiedAt,omitzero"`
}

// Store is the interface for overlay storage backends.
type Store interface {
	// Get retrieves a record.
	// Returns nil, nil if the record doesn't exist.
	Get(ctx context.Context, container, key string) (*Record, error)

	// Put creates or replaces a record.
	Put(ctx context.Context, rec Record) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Backends lists the names accepted by [Open], for help text and completion.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo, BackendSQLite}

// Options configures [Open].
type Options struct {
	Backend string
	// Path is the directory for the file backend or the database file for sqlite.
	Path string
	// URL is the server address for redis ("redis://...") and mongo ("mongodb://...").
	URL string
	// Database is the mongo database name.
	Database string
	// Logger receives backend diagnostics. Nil keeps the backend quiet.
	Logger *log.Logger
}

// Open creates the store named by opts.Backend.
// The platform API store is built from a catalog client instead; see [NewAPIStore].
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileStore(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{URL: opts.URL})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{URI: opts.URL, Database: opts.Database})
	case BackendSQLite:
		return NewSQLStore(ctx, opts.Path, WithSQLLogger(opts.Logger))
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown overlay backend %q", opts.Backend)
	}
}

func storeErr(op string, rec Record, err error) error {
	return errors.Wrap(errors.ErrCodeStore, err, "%s %s/%s", op, rec.Container, rec.Key)
}

func recordID(container, key string) string {
	return fmt.Sprintf("%s/%s", container, key)
}
