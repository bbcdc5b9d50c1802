package providers

import (
	"net/http"

	"ytmeta/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
	Known(url string) bool
}

type RouterProvider struct {
	routes []structures.Route
	urls   map[string]struct{}
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(url, methodHandler(handler, http.MethodGet, http.MethodHead))
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(url, methodHandler(handler, http.MethodPost))
}

func (rp *RouterProvider) add(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{Url: url, Handler: handler})
	rp.urls[url] = struct{}{}
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Known reports whether url was registered. Metrics use it to keep endpoint labels bounded.
func (rp *RouterProvider) Known(url string) bool {
	_, ok := rp.urls[url]
	return ok
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{urls: make(map[string]struct{})}
}

func methodHandler(handler http.Handler, methods ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				handler.ServeHTTP(w, r)
				return
			}
		}
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
}
