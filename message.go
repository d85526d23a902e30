package plate

import (
	"net/http"
)

// Request is the transport neutral form of an inbound request. Connectors
// translate their native representation into it.
type Request struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

func (r Response) Header(name string) string {
	return r.Headers.Get(name)
}

const (
	ContentTypeHTML = "text/html; charset=UTF-8"
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=UTF-8"

	AssetCacheControl = "public, max-age=6048000, immutable"
)

func respond(status int, contentType string, body []byte) Response {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	return Response{Status: status, Headers: headers, Body: body}
}

func textResponse(status int, body string) Response {
	return respond(status, ContentTypeText, []byte(body))
}

func notFound(path string) Response {
	return textResponse(http.StatusNotFound, `404 Not Found (path: "`+path+`")`)
}

func serverError() Response {
	return textResponse(http.StatusInternalServerError, "500 Internal Server Error")
}
