package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// DefaultAPIVersion is the x-api-version sent to the user endpoints.
const DefaultAPIVersion = "1.0"

// listQuery approximates "fetch everything" for endpoints that paginate.
const listQuery = "?page=1&pageSize=1000"

// PathSet lists the candidate endpoints for each resource. Each list is tried
// in order and the first success wins, so the backend's route casing and
// version prefix need not be known in advance.
type PathSet struct {
	Login       []string `yaml:"login" json:"login"`
	Register    []string `yaml:"register" json:"register"`
	Motorcycles []string `yaml:"motorcycles" json:"motorcycles"`
	Areas       []string `yaml:"areas" json:"areas"`
	// Users has no fallback variants.
	Users string `yaml:"users" json:"users"`
}

// DefaultPaths returns the endpoint variants known to exist across deployments.
func DefaultPaths() PathSet {
	return PathSet{
		Login: []string{
			"/api/v1/auth/login",
			"/api/auth/login",
			"/api/v1/Auth/login",
			"/api/Auth/login",
		},
		Register: []string{
			"/api/v1/auth/register",
			"/api/auth/register",
			"/api/v1/auth/signup",
			"/api/auth/signup",
			"/api/v1/Auth/register",
			"/api/Auth/register",
			"/api/v1/Auth/signup",
			"/api/Auth/signup",
		},
		Motorcycles: []string{
			"/api/v1/Motos",
			"/api/Motos",
		},
		Areas: []string{
			"/api/v1/Area",
			"/api/Area",
			"/api/v1/Areas",
			"/api/Areas",
		},
		Users: "/api/Usuarios",
	}
}

// Merge returns p with every non-empty field of override applied on top.
func (p PathSet) Merge(override PathSet) PathSet {
	if len(override.Login) > 0 {
		p.Login = append([]string(nil), override.Login...)
	}
	if len(override.Register) > 0 {
		p.Register = append([]string(nil), override.Register...)
	}
	if len(override.Motorcycles) > 0 {
		p.Motorcycles = append([]string(nil), override.Motorcycles...)
	}
	if len(override.Areas) > 0 {
		p.Areas = append([]string(nil), override.Areas...)
	}
	if override.Users != "" {
		p.Users = override.Users
	}
	return p
}

// Validate reports the first empty candidate list.
func (p PathSet) Validate() error {
	lists := []struct {
		name  string
		paths []string
	}{
		{"login", p.Login},
		{"register", p.Register},
		{"motorcycles", p.Motorcycles},
		{"areas", p.Areas},
	}
	for _, l := range lists {
		if len(l.paths) == 0 {
			return fmt.Errorf("path set %q is empty", l.name)
		}
		for i, path := range l.paths {
			if path == "" {
				return fmt.Errorf("path set %q has an empty entry at position %d", l.name, i)
			}
		}
	}
	if p.Users == "" {
		return fmt.Errorf("path set \"users\" is empty")
	}
	return nil
}

// withSuffix appends suffix to every path.
func withSuffix(paths []string, suffix string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p + suffix
	}
	return out
}

func idSuffix(id int) string {
	return "/" + strconv.Itoa(id)
}

// TryPaths calls each candidate path in order and returns the first 2xx
// response. Later candidates are never contacted once one succeeds.
//
// A transport failure on one candidate (a per-request timeout included) is
// recorded and the next candidate is tried; cancelling ctx stops the walk.
// When every candidate fails the result is a *RequestExhaustedError describing
// the last attempt. paths must not be empty.
func (c *Client) TryPaths(ctx context.Context, paths []string, opts RequestOptions) (*Response, error) {
	if len(paths) == 0 {
		panic("api: TryPaths called with no candidate paths")
	}

	exhausted := &RequestExhaustedError{Attempts: make([]Attempt, 0, len(paths))}
	for _, path := range paths {
		resp, err := c.Do(ctx, path, opts)
		if err != nil {
			var netErr *NetworkError
			if !errors.As(err, &netErr) || isContextDone(ctx, err) {
				return nil, err
			}
			exhausted.Status = 0
			exhausted.Body = err.Error()
			exhausted.Err = err
			exhausted.Attempts = append(exhausted.Attempts, Attempt{Path: path, Err: err})
			c.logger().Debug("candidate path failed", "path", path, "error", err)
			continue
		}
		if resp.OK() {
			return resp, nil
		}

		text := resp.Text()
		if text == "" {
			text = strconv.Itoa(resp.StatusCode)
		}
		exhausted.Status = resp.StatusCode
		exhausted.Body = text
		exhausted.Err = nil
		exhausted.Attempts = append(exhausted.Attempts, Attempt{Path: path, Status: resp.StatusCode})
		c.logger().Debug("candidate path failed", "path", path, "status", resp.StatusCode)
	}
	return nil, exhausted
}
