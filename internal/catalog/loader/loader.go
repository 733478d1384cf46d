package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	pkgcatalog "github.com/goliatone/go-predict/pkg/catalog"
)

// Loader implements pkgcatalog.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// Ensure the implementation satisfies the public interface.
var _ pkgcatalog.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgcatalog.LoaderOptions) pkgcatalog.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgcatalog.Source) (pkgcatalog.Document, error) {
	if src == nil {
		return pkgcatalog.Document{}, errors.New("catalog loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgcatalog.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case pkgcatalog.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case pkgcatalog.SourceKindURL:
		if !l.allowHTTP {
			return pkgcatalog.Document{}, errors.New("catalog loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("catalog loader: unsupported source kind")
	}
	if err != nil {
		return pkgcatalog.Document{}, err
	}

	return pkgcatalog.NewDocument(src, data)
}
