// Package platehttp serves a plate.Handler over net/http.
package platehttp

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	plate "github.com/weegigs/steel-plate-go"
)

// DefaultMaxBodyBytes caps submit bodies. A valid body is at most two digits.
const DefaultMaxBodyBytes = 1 << 10

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

// Prefix strips a deployment path prefix before routing.
func Prefix(prefix string) HandlerOption {
	return func(service *httpService) {
		service.prefix = prefix
	}
}

func MaxBodyBytes(limit int64) HandlerOption {
	return func(service *httpService) {
		service.maxBodyBytes = limit
	}
}

func NewHandler(handler *plate.Handler, options ...HandlerOption) http.Handler {
	service := &httpService{handler: handler, maxBodyBytes: DefaultMaxBodyBytes}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(service.withLogging)

	// routing is decided by plate.Classify so that every deployment shape
	// answers the same way, chi only funnels requests into it
	r.Handle("/*", service.serve())
	r.NotFound(service.serve())
	r.MethodNotAllowed(service.serve())

	return otelhttp.NewHandler(r, "steel-plate-http")
}

type httpService struct {
	log          *zerolog.Logger
	handler      *plate.Handler
	prefix       string
	maxBodyBytes int64
}

func (service *httpService) serve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			read, err := io.ReadAll(http.MaxBytesReader(w, r.Body, service.maxBodyBytes))
			if err != nil {
				// an unreadable body counts as no increment
				service.log.Debug().Err(err).Msg("failed to read request body")
			} else {
				body = read
			}
		}

		resp := service.handler.Handle(r.Context(), plate.Request{
			Method:  r.Method,
			Path:    plate.StripPrefix(r.URL.Path, service.prefix),
			Headers: r.Header,
			Body:    body,
		})

		for name, values := range resp.Headers {
			for _, value := range values {
				w.Header().Add(name, value)
			}
		}
		w.WriteHeader(resp.Status)
		if _, err := w.Write(resp.Body); err != nil {
			service.log.Debug().Err(err).Msg("failed to write response")
		}
	}
}

func (service *httpService) withLogging(h http.Handler) http.Handler {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)

		uri := r.RequestURI
		method := r.Method
		h.ServeHTTP(ww, r)

		service.log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Send()
	}
	return http.HandlerFunc(logFn)
}
