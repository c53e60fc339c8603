package inspect

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// API serves read-only views of a registry.
type API struct {
	reg    *reflection.Registry
	logger *zap.Logger
}

// NewAPI creates the API over reg. A nil logger disables request logging.
func NewAPI(reg *reflection.Registry, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{reg: reg, logger: logger}
}

// Router builds the route tree. Type, enum, interface and attribute names
// may be fully qualified or short; qualified names contain slashes, so they
// are matched with a trailing wildcard.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, fmt.Errorf("route %s: %w", req.URL.Path, ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error: ErrorDetail{
				Code:    "METHOD_NOT_ALLOWED",
				Message: fmt.Sprintf("Method %s is not allowed; the API is read-only", req.Method),
			},
			Status: http.StatusMethodNotAllowed,
			Path:   req.URL.Path,
		})
	})

	r.Get("/health", a.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/types", a.listTypes)
		r.Get("/types/*", a.getType)
		r.Get("/enums", a.listEnums)
		r.Get("/enums/*", a.getEnum)
		r.Get("/buckets", a.listBuckets)
		r.Get("/buckets/*", a.getBucket)
		r.Get("/attributes", a.listAttributes)
		r.Get("/attributes/*", a.getAttribute)
		r.Get("/modules", a.listModules)
		r.Get("/modules/{name}", a.getModule)
	})
	return r
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":  "ok",
		"types":   a.reg.Len(),
		"enums":   len(a.reg.Enums()),
		"modules": len(a.reg.Modules()),
	})
}

func (a *API) listTypes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	types, err := ListTypes(a.reg, q.Get("bucket"), q.Get("module"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, types)
}

func (a *API) getType(w http.ResponseWriter, r *http.Request) {
	d, err := FindType(a.reg, chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, Describe(d))
}

func (a *API) listEnums(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, DescribeEnums(a.reg.Enums()))
}

func (a *API) getEnum(w http.ResponseWriter, r *http.Request) {
	e, err := FindEnum(a.reg, chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, DescribeEnum(e))
}

func (a *API) listBuckets(w http.ResponseWriter, r *http.Request) {
	var out []BucketView
	for _, h := range a.reg.TypeBuckets() {
		d, ok := a.reg.Reflection(h)
		if !ok {
			continue
		}
		defs, _ := a.reg.TypeBucket(h)
		out = append(out, BucketView{Interface: d.Name(), Types: Summaries(defs)})
	}
	if out == nil {
		out = []BucketView{}
	}
	writeJSON(w, r, out)
}

func (a *API) getBucket(w http.ResponseWriter, r *http.Request) {
	view, err := Bucket(a.reg, chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, view)
}

func (a *API) listAttributes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, KnownAttributes(a.reg))
}

func (a *API) getAttribute(w http.ResponseWriter, r *http.Request) {
	name, defs, err := TypesWithAttribute(a.reg, chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{
		"attribute": name,
		"types":     Summaries(defs),
	})
}

func (a *API) listModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, a.reg.Modules())
}

func (a *API) getModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, ok := a.reg.ModuleInfo(name)
	if !ok {
		writeError(w, r, fmt.Errorf("module %q: %w", name, ErrNotFound))
		return
	}
	writeJSON(w, r, info)
}
