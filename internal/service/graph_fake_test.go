package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type graphCall struct {
	Method string
	Path   string
	Form   url.Values
	Auth   string
}

// fakeGraph stands in for the Meta Graph API. Container status answers come
// from statusFor, which defaults to FINISHED.
type fakeGraph struct {
	mu        sync.Mutex
	calls     []graphCall
	seq       int
	statusFor func(containerID string) (code, status string)
	failEdge  map[string]int
	srv       *httptest.Server
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()
	g := &fakeGraph{failEdge: map[string]int{}}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGraph) URL() string { return g.srv.URL }

func (g *fakeGraph) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.calls = append(g.calls, graphCall{Method: r.Method, Path: r.URL.Path, Form: r.Form, Auth: r.Header.Get("Authorization")})
	g.seq++
	n := g.seq
	statusFor := g.statusFor
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	if r.Method == http.MethodPost && len(parts) == 2 {
		if code, ok := g.failEdge[parts[1]]; ok {
			w.WriteHeader(code)
			fmt.Fprintf(w, `{"error":{"message":"(#100) %s rejected","type":"OAuthException","code":100}}`, parts[1])
			return
		}
		switch parts[1] {
		case "photos":
			if r.Form.Get("published") == "false" {
				fmt.Fprintf(w, `{"id":"photo-%d"}`, n)
				return
			}
			fmt.Fprintf(w, `{"id":"photo-%d","post_id":"%s_%d"}`, n, parts[0], n)
		case "feed":
			fmt.Fprintf(w, `{"id":"%s_feed-%d"}`, parts[0], n)
		case "videos":
			fmt.Fprintf(w, `{"id":"video-%d"}`, n)
		case "media":
			fmt.Fprintf(w, `{"id":"container-%d"}`, n)
		case "media_publish":
			fmt.Fprintf(w, `{"id":"media-%d"}`, n)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"message":"unknown edge","code":803}}`)
		}
		return
	}

	if r.Method == http.MethodGet && len(parts) == 1 {
		switch r.Form.Get("fields") {
		case "status_code,status":
			code, status := "FINISHED", ""
			if statusFor != nil {
				code, status = statusFor(parts[0])
			}
			fmt.Fprintf(w, `{"id":"%s","status_code":"%s","status":"%s"}`, parts[0], code, status)
		case "permalink":
			fmt.Fprintf(w, `{"id":"%s","permalink":"https://www.instagram.com/p/%s/"}`, parts[0], parts[0])
		default:
			fmt.Fprintf(w, `{"id":"%s"}`, parts[0])
		}
		return
	}

	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(w, `{"error":{"message":"unsupported request","code":100}}`)
}

func (g *fakeGraph) callsTo(method, suffix string) []graphCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []graphCall
	for _, c := range g.calls {
		if c.Method == method && strings.HasSuffix(c.Path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

func (g *fakeGraph) statusChecks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Method == http.MethodGet && c.Form.Get("fields") == "status_code,status" {
			n++
		}
	}
	return n
}
