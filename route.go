package plate

import (
	"net/http"
	"strings"
)

const (
	AssetPrefix = "/src/"
	IndexPath   = "/"
	SubmitPath  = "/submit"
)

type RouteKind int

const (
	NotFound RouteKind = iota
	Asset
	Index
	Submit
)

func (k RouteKind) String() string {
	switch k {
	case Asset:
		return "asset"
	case Index:
		return "index"
	case Submit:
		return "submit"
	default:
		return "not-found"
	}
}

type Route struct {
	Kind RouteKind
	// Asset is the asset name relative to the site root, e.g. "src/app.js".
	Asset string
}

// StripPrefix removes a deployment prefix such as an API Gateway stage
// ("/prod") so both deployment shapes route the same paths. The prefix is
// only removed on a segment boundary.
func StripPrefix(path, prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return path
	}

	if path == prefix {
		return "/"
	}

	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):]
	}

	return path
}

func Classify(method, path string) Route {
	switch {
	case method == http.MethodGet && strings.HasPrefix(path, AssetPrefix):
		return Route{Kind: Asset, Asset: strings.TrimLeft(path, "/")}
	case method == http.MethodGet && path == IndexPath:
		return Route{Kind: Index}
	case method == http.MethodPost && path == SubmitPath:
		return Route{Kind: Submit}
	default:
		return Route{Kind: NotFound}
	}
}
