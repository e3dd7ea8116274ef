package routes

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/shared"
)

// Client paths.
const (
	Root               = "/"
	Login              = "/login"
	Register           = "/register"
	Main               = "/main"
	Profile            = "/profile"
	Concert            = "/concert"
	ConcertList        = "/concert/list"
	ConcertCreate      = "/concert/create"
	ConcertDetail      = "/concert/:id"
	ModerationConcerts = "/moderation/concerts"
	ModerationUsers    = "/moderation/users"
)

const maxRedirects = 5

// Page pairs a pattern with its guard.
type Page struct {
	Pattern string
	Guard   Guard
}

// Pages lists the client's pages in match order.
var Pages = []Page{
	{Login, Public},
	{Register, GuestOnly},
	{Main, Public},
	{Profile, Protected},
	{ConcertList, Protected},
	{ConcertCreate, Protected},
	{ConcertDetail, Protected},
	{ModerationConcerts, Admin},
	{ModerationUsers, Admin},
}

// Guard is the access rule attached to a route.
type Guard int

const (
	Public Guard = iota
	GuestOnly
	Protected
	Admin
)

func (g Guard) String() string {
	switch g {
	case GuestOnly:
		return "guest-only"
	case Protected:
		return "protected"
	case Admin:
		return "admin"
	default:
		return "public"
	}
}

// Authenticator reports the current session. CheckAuth is expected to consult persisted storage.
type Authenticator interface {
	CheckAuth() bool
	IsAdmin() bool
}

// Request is a resolved navigation.
type Request struct {
	Path    string            // Path is the final path after redirects
	Pattern string            // Pattern is the registered pattern that matched
	Params  map[string]string // Params holds ":name" captures
	From    string            // From is the path originally requested
}

// Param returns the named capture, or "".
func (r *Request) Param(name string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Redirected reports whether the final path differs from the requested one.
func (r *Request) Redirected() bool {
	return r.From != "" && r.From != r.Path
}

// Handler renders or executes the page for a resolved request.
type Handler func(ctx context.Context, req *Request) error

// Middleware wraps a [Handler] and returns a new one with additional behavior.
type Middleware func(Handler) Handler

type route struct {
	pattern  string
	segments []string
	guard    Guard
	handler  Handler
}

// Router resolves paths to registered pages, applying redirects and guards.
type Router struct {
	auth        Authenticator
	logger      *log.Logger
	routes      []route
	aliases     map[string]string
	fallback    string
	middlewares []Middleware
}

// New creates a [Router] with the client's fixed redirects: "/" and unknown paths go to /main,
// "/concert" goes to /concert/list.
func New(auth Authenticator, logger *log.Logger) *Router {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Router{
		auth:     auth,
		logger:   logger,
		aliases:  map[string]string{Root: Main, Concert: ConcertList},
		fallback: Main,
	}
}

// Standard registers every entry of [Pages], taking handlers from the map when present.
func (r *Router) Standard(handlers map[string]Handler) {
	for _, p := range Pages {
		r.Handle(p.Pattern, p.Guard, handlers[p.Pattern])
	}
}

// Use adds [Middleware] to the router's stack, applied in the order it's added.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for pattern behind guard. Patterns are matched in registration order,
// so "/concert/create" must be registered before "/concert/:id".
func (r *Router) Handle(pattern string, guard Guard, handler Handler) {
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: split(pattern),
		guard:    guard,
		handler:  handler,
	})
}

// Resolve follows aliases and guards for path without running any handler.
func (r *Router) Resolve(path string) (*Request, error) {
	current := normalize(path)

	for range maxRedirects {
		if target, ok := r.aliases[current]; ok {
			current = target
			continue
		}

		rt, params, ok := r.match(current)
		if !ok {
			if current == r.fallback {
				return nil, fmt.Errorf("%w: no route for fallback %s", shared.ErrInvalidArgument, current)
			}
			current = r.fallback
			continue
		}

		if target := r.check(rt.guard); target != "" {
			r.logger.Debug("route guarded", "path", current, "guard", rt.guard, "redirect", target)
			current = target
			continue
		}

		return &Request{Path: current, Pattern: rt.pattern, Params: params, From: normalize(path)}, nil
	}

	return nil, fmt.Errorf("%w: too many redirects resolving %s", shared.ErrInvalidArgument, path)
}

// Navigate resolves path and runs the final route's handler wrapped in the middleware stack.
func (r *Router) Navigate(ctx context.Context, path string) (*Request, error) {
	req, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	rt, _, _ := r.match(req.Path)
	if rt.handler == nil {
		return req, nil
	}
	return req, r.Apply(rt.handler)(ctx, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *Router) Apply(handler Handler) Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// Allowed reports whether pattern's guard currently admits the session.
func (r *Router) Allowed(pattern string) bool {
	for _, rt := range r.routes {
		if rt.pattern == pattern {
			return r.check(rt.guard) == ""
		}
	}
	return false
}

// check returns the redirect target required by guard, or "" when access is granted.
func (r *Router) check(guard Guard) string {
	switch guard {
	case GuestOnly:
		if r.auth != nil && r.auth.CheckAuth() {
			return Main
		}
	case Protected:
		if r.auth == nil || !r.auth.CheckAuth() {
			return Login
		}
	case Admin:
		if r.auth == nil || !r.auth.CheckAuth() {
			return Login
		}
		if !r.auth.IsAdmin() {
			return Main
		}
	}
	return ""
}

func (r *Router) match(path string) (route, map[string]string, bool) {
	segments := split(path)

next:
	for _, rt := range r.routes {
		if len(rt.segments) != len(segments) {
			continue
		}

		var params map[string]string
		for i, seg := range rt.segments {
			if name, ok := strings.CutPrefix(seg, ":"); ok {
				if segments[i] == "" {
					continue next
				}
				if params == nil {
					params = make(map[string]string)
				}
				params[name] = segments[i]
				continue
			}
			if seg != segments[i] {
				continue next
			}
		}
		return rt, params, true
	}
	return route{}, nil, false
}

// Build fills ":name" segments of pattern from params, e.g. Build(ConcertDetail, "id", "12").
func Build(pattern string, kv ...string) string {
	values := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}

	segments := split(pattern)
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			segments[i] = values[name]
		}
	}
	return "/" + strings.Join(segments, "/")
}

// Logging logs every navigation with its pattern and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			err := next(ctx, req)
			logger.Debug("navigate",
				"path", req.Path,
				"pattern", req.Pattern,
				"from", req.From,
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
	}
}

func normalize(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimSpace(path)
	if path == "" {
		return Root
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}
