// Package gateway adapts a plate.Handler to API Gateway HTTP API (payload
// version 2.0) Lambda events.
package gateway

import (
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	plate "github.com/weegigs/steel-plate-go"
)

const defaultStage = "$default"

type Handler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type HandlerOption func(adapter *adapter)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(adapter *adapter) {
		adapter.log = log
	}
}

func NewHandler(handler *plate.Handler, options ...HandlerOption) Handler {
	a := &adapter{handler: handler}
	for _, option := range options {
		option(a)
	}
	if a.log == nil {
		a.log = &log.Logger
	}

	return a.handle
}

type adapter struct {
	handler *plate.Handler
	log     *zerolog.Logger
}

func (a *adapter) handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp := a.handler.Handle(ctx, Request(event))

	a.log.Info().
		Str("request_id", event.RequestContext.RequestID).
		Str("method", event.RequestContext.HTTP.Method).
		Str("path", event.RawPath).
		Int("status", resp.Status).
		Send()

	return Response(resp), nil
}

// Request converts an API Gateway event. The stage name is stripped from the
// path; a body that fails base64 decoding is dropped, which the handler treats
// as no increment.
func Request(event events.APIGatewayV2HTTPRequest) plate.Request {
	path := event.RawPath
	if path == "" {
		path = event.RequestContext.HTTP.Path
	}
	if stage := event.RequestContext.Stage; stage != "" && stage != defaultStage {
		path = plate.StripPrefix(path, stage)
	}

	headers := http.Header{}
	for name, value := range event.Headers {
		headers.Set(name, value)
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			body = nil
		} else {
			body = decoded
		}
	}

	return plate.Request{
		Method:  event.RequestContext.HTTP.Method,
		Path:    path,
		Headers: headers,
		Body:    body,
	}
}

// Response converts a plate.Response, base64 encoding anything that is not
// textual.
func Response(resp plate.Response) events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(resp.Headers))
	for name := range resp.Headers {
		headers[name] = resp.Headers.Get(name)
	}

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.Status,
		Headers:    headers,
	}

	if textual(resp.Headers.Get("Content-Type")) {
		out.Body = string(resp.Body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(resp.Body)
		out.IsBase64Encoded = true
	}

	return out
}

func textual(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/json", mediaType == "application/javascript", strings.HasSuffix(mediaType, "+xml"):
		return true
	default:
		return false
	}
}
