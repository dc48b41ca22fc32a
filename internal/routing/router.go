package routing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Match describes a route template that accepted a URL path.
type Match struct {
	Group  string
	Route  string
	Params map[string]string
}

// Param returns the trimmed value captured for name.
func (m Match) Param(name string) string {
	if m.Params == nil {
		return ""
	}
	return strings.TrimSpace(m.Params[name])
}

type segment struct {
	literal string
	param   string
}

type route struct {
	group    string
	name     string
	host     string
	template string
	segments []segment
	static   int
}

// Router matches site URLs against the permalink templates declared in a go-urlkit config.
// Templates use the urlkit ":param" syntax; group paths are prefixed to their routes.
type Router struct {
	manager *urlkit.RouteManager
	routes  []route
}

// New compiles the templates declared in cfg. A nil config yields a router that never matches.
func New(cfg *urlkit.Config) (*Router, error) {
	r := &Router{}
	if cfg == nil {
		return r, nil
	}

	for _, group := range cfg.Groups {
		if err := r.compileGroup(group, "", "", ""); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(r.routes, func(i, j int) bool {
		if r.routes[i].static != r.routes[j].static {
			return r.routes[i].static > r.routes[j].static
		}
		if len(r.routes[i].segments) != len(r.routes[j].segments) {
			return len(r.routes[i].segments) > len(r.routes[j].segments)
		}
		if r.routes[i].group != r.routes[j].group {
			return r.routes[i].group < r.routes[j].group
		}
		return r.routes[i].name < r.routes[j].name
	})

	manager, err := newManager(cfg)
	if err != nil {
		return nil, err
	}
	r.manager = manager
	return r, nil
}

func (r *Router) compileGroup(group urlkit.GroupConfig, parentPath, parentHost, prefix string) error {
	name := strings.TrimSpace(group.Name)
	if name == "" {
		return fmt.Errorf("routing: group name is required")
	}
	if parentPath != "" {
		name = parentPath + "." + name
	}

	host := parentHost
	if base := strings.TrimSpace(group.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("routing: group %q base url: %w", name, err)
		}
		host = strings.ToLower(parsed.Host)
		prefix = joinPath(prefix, parsed.Path)
	}
	prefix = joinPath(prefix, group.Path)

	for routeName, template := range group.Paths {
		compiled := route{
			group:    name,
			name:     routeName,
			host:     host,
			template: joinPath(prefix, template),
		}
		for _, part := range splitPath(compiled.template) {
			if strings.HasPrefix(part, ":") && len(part) > 1 {
				compiled.segments = append(compiled.segments, segment{param: part[1:]})
				continue
			}
			compiled.segments = append(compiled.segments, segment{literal: part})
			compiled.static++
		}
		r.routes = append(r.routes, compiled)
	}

	for _, child := range group.Groups {
		if err := r.compileGroup(child, name, host, prefix); err != nil {
			return err
		}
	}
	return nil
}

// Match returns the first route accepting the URL path. Routes with more literal segments win.
func (r *Router) Match(target *url.URL) (Match, bool) {
	if r == nil || target == nil {
		return Match{}, false
	}
	parts := splitPath(target.EscapedPath())
	host := strings.ToLower(target.Host)

	for _, candidate := range r.routes {
		if candidate.host != "" && host != "" && candidate.host != host {
			continue
		}
		params, ok := candidate.match(parts)
		if !ok {
			continue
		}
		if !r.confirm(candidate, params, target) {
			continue
		}
		return Match{Group: candidate.group, Route: candidate.name, Params: params}, true
	}
	return Match{}, false
}

func (rt route) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(rt.segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range rt.segments {
		if seg.param == "" {
			if seg.literal != parts[i] {
				return nil, false
			}
			continue
		}
		value, err := url.PathUnescape(parts[i])
		if err != nil || value == "" {
			return nil, false
		}
		params[seg.param] = value
	}
	return params, true
}

// confirm rebuilds the matched route through urlkit and requires the same path.
// When the builder cannot produce a URL the template match stands on its own.
func (r *Router) confirm(rt route, params map[string]string, target *url.URL) bool {
	built, err := r.Build(rt.group, rt.name, params)
	if err != nil || built == "" {
		return true
	}
	parsed, err := url.Parse(built)
	if err != nil {
		return true
	}
	return samePath(parsed.Path, target.Path)
}

// Build renders the permalink for a route using the go-urlkit builder.
func (r *Router) Build(groupPath, routeName string, params map[string]string) (built string, err error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("routing: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			built = ""
			err = fmt.Errorf("routing: build %s.%s: %v", groupPath, routeName, rec)
		}
	}()

	parts := strings.Split(groupPath, ".")
	group := r.manager.Group(parts[0])
	for _, part := range parts[1:] {
		group = group.Group(part)
	}
	builder := group.Builder(routeName)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	return builder.Build()
}

// Routes lists the compiled templates as "group.route" => template, mostly for diagnostics.
func (r *Router) Routes() map[string]string {
	out := make(map[string]string, len(r.routes))
	for _, rt := range r.routes {
		out[rt.group+"."+rt.name] = rt.template
	}
	return out
}

func newManager(cfg *urlkit.Config) (manager *urlkit.RouteManager, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			manager = nil
			err = fmt.Errorf("routing: invalid route config: %v", rec)
		}
	}()
	return urlkit.NewRouteManager(cfg), nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	out := raw[:0]
	for _, part := range raw {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinPath(prefix, path string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	path = strings.Trim(strings.TrimSpace(path), "/")
	switch {
	case prefix == "" && path == "":
		return "/"
	case prefix == "":
		return "/" + path
	case path == "":
		return "/" + prefix
	default:
		return "/" + prefix + "/" + path
	}
}

func samePath(a, b string) bool {
	return strings.Trim(a, "/") == strings.Trim(b, "/")
}
