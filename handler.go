package plate

import (
	"context"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "steel-plate"

// Site supplies the static side of the application: embedded assets and the
// index page template.
type Site interface {
	Asset(name string) ([]byte, bool)
	RenderIndex(total Total) ([]byte, error)
}

// Handler routes a Request and produces its Response. It holds no per request
// state and is safe for concurrent use.
type Handler struct {
	store CounterStore
	site  Site
	log   *zerolog.Logger
}

func NewHandler(store CounterStore, site Site, log *zerolog.Logger) *Handler {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	return &Handler{store: store, site: site, log: log}
}

type snapshot struct {
	Total Total `json:"total"`
}

func (h *Handler) Handle(ctx context.Context, req Request) Response {
	route := Classify(req.Method, req.Path)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "handle "+route.Kind.String())
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	)

	var resp Response
	switch route.Kind {
	case Asset:
		resp = h.asset(route.Asset, req.Path)
	case Index:
		resp = h.index(ctx)
	case Submit:
		resp = h.submit(ctx, req.Body)
	default:
		resp = notFound(req.Path)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if resp.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(resp.Status))
	}

	return resp
}

func (h *Handler) asset(name string, requested string) Response {
	data, ok := h.site.Asset(name)
	if !ok {
		return notFound(requested)
	}

	resp := respond(http.StatusOK, sniff(name, data), data)
	resp.Headers.Set("Cache-Control", AssetCacheControl)

	return resp
}

func (h *Handler) index(ctx context.Context) Response {
	total, err := h.store.Total(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("route", Index.String()).Msg("failed to read total")
		return serverError()
	}

	page, err := h.site.RenderIndex(total)
	if err != nil {
		h.log.Error().Err(err).Uint32("total", uint32(total)).Msg("failed to render index")
		return serverError()
	}

	return respond(http.StatusOK, ContentTypeHTML, page)
}

func (h *Handler) submit(ctx context.Context, body []byte) Response {
	var total Total
	var err error

	if delta, ok := ParseDelta(body); ok {
		total, err = h.store.Add(ctx, delta)
	} else {
		h.log.Debug().Int("size", len(body)).Msg("ignoring submit body")
		total, err = h.store.Total(ctx)
	}

	if err != nil {
		h.log.Error().Err(err).Str("route", Submit.String()).Msg("failed to update total")
		return serverError()
	}

	encoded, err := json.Marshal(snapshot{Total: total})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode total")
		return serverError()
	}

	return respond(http.StatusOK, ContentTypeJSON, encoded)
}

// sniff infers a content type from the leading bytes of an asset, falling
// back to the file extension for text formats the sniffer cannot tell apart.
// An empty result means no Content-Type header is sent.
func sniff(name string, data []byte) string {
	detected := http.DetectContentType(data)
	if !strings.HasPrefix(detected, "text/plain") && detected != "application/octet-stream" {
		return detected
	}

	if byExtension := mime.TypeByExtension(path.Ext(name)); byExtension != "" {
		return byExtension
	}

	if strings.HasPrefix(detected, "text/plain") {
		return detected
	}

	return ""
}
