// Package mediatest provides a scripted media.Runner for tests.
package mediatest

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/maauso/gifposter/internal/media"
)

// Runner is a fake media.Runner. Tools listed in Paths are reported as
// installed; Handler, when set, produces the output of every Run call.
type Runner struct {
	Paths   map[string]string
	Handler func(name string, args []string) (media.Output, error)

	mu    sync.Mutex
	calls [][]string
}

// NewRunner returns a Runner with the given tools installed on PATH.
func NewRunner(tools ...string) *Runner {
	paths := make(map[string]string, len(tools))
	for _, t := range tools {
		paths[t] = "/usr/bin/" + t
	}
	return &Runner{Paths: paths}
}

// LookPath implements media.Runner.
func (r *Runner) LookPath(name string) (string, error) {
	if p, ok := r.Paths[name]; ok {
		return p, nil
	}
	return "", exec.ErrNotFound
}

// Run implements media.Runner.
func (r *Runner) Run(_ context.Context, name string, args ...string) (media.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()

	if r.Handler == nil {
		return media.Output{}, nil
	}
	return r.Handler(name, args)
}

// Calls returns every recorded invocation as "name arg1 arg2 ...".
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}
