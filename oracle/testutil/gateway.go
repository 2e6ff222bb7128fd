// Package testutil provides a stub BandChain REST gateway and the fixtures
// it serves, for tests of the fetcher, the CLI and the e2e suite.
package testutil

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/tidwall/sjson"
)

const (
	// DefaultCalldata is OBI {symbol: "BAND", multiplier: 1000000} in hex.
	DefaultCalldata = "0000000442414e4400000000000f4240"
	// FixturePx is the px encoded in RequestSearchJSON.
	FixturePx uint64 = 4190000
	// ResultPath locates the OBI payload inside a request_search body.
	ResultPath = "result.result.ResponsePacketData.result"
)

var (
	//go:embed testdata/oracle_script.json
	OracleScriptJSON []byte
	//go:embed testdata/request_search.json
	RequestSearchJSON []byte
)

// Gateway serves /rest/oracle/oracle_scripts/{id} and /rest/oracle/request_search.
type Gateway struct {
	*httptest.Server

	mu      sync.Mutex
	scripts map[string][]byte
	search  []byte
	status  int
	delay   time.Duration
	hits    int
	query   url.Values
	header  http.Header
}

// NewGateway starts a gateway answering with the package fixtures.
func NewGateway() *Gateway {
	g := &Gateway{
		scripts: map[string][]byte{"1": OracleScriptJSON},
		search:  RequestSearchJSON,
		status:  http.StatusOK,
	}

	r := mux.NewRouter()
	rest := r.PathPrefix("/rest").Subrouter()
	rest.HandleFunc("/oracle/oracle_scripts/{id}", g.handleOracleScript).Methods(http.MethodGet)
	rest.HandleFunc("/oracle/request_search", g.handleRequestSearch).Methods(http.MethodGet)

	g.Server = httptest.NewServer(r)
	return g
}

// Endpoint is the base URI to hand to a fetcher.
func (g *Gateway) Endpoint() string {
	return g.URL + "/rest"
}

func (g *Gateway) SetOracleScript(id string, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scripts[id] = body
}

func (g *Gateway) SetRequestSearch(body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.search = body
}

// SetStatus makes every route answer with code and a plain text body.
func (g *Gateway) SetStatus(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.status = code
}

// SetDelay holds every answer back for d, or until the client gives up.
func (g *Gateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.delay = d
}

// Hits counts the requests served so far.
func (g *Gateway) Hits() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.hits
}

// LastQuery returns the query of the latest request.
func (g *Gateway) LastQuery() url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.query
}

// LastHeader returns the headers of the latest request.
func (g *Gateway) LastHeader() http.Header {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.header
}

func (g *Gateway) handleOracleScript(w http.ResponseWriter, r *http.Request) {
	if !g.begin(w, r) {
		return
	}

	g.mu.Lock()
	script, found := g.scripts[mux.Vars(r)["id"]]
	g.mu.Unlock()

	if !found {
		http.Error(w, `{"error":"oracle script not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(script)
}

func (g *Gateway) handleRequestSearch(w http.ResponseWriter, r *http.Request) {
	if !g.begin(w, r) {
		return
	}

	g.mu.Lock()
	body := g.search
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// begin records the request and applies the configured delay and status.
// It reports whether the route should go on and write its fixture.
func (g *Gateway) begin(w http.ResponseWriter, r *http.Request) bool {
	g.mu.Lock()
	g.hits++
	g.query = r.URL.Query()
	g.header = r.Header.Clone()
	status, delay := g.status, g.delay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return false
		}
	}

	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return false
	}

	return true
}

// MustSet returns a copy of body with the json value at path replaced.
func MustSet(body []byte, path string, value any) []byte {
	out, err := sjson.SetBytes(body, path, value)
	if err != nil {
		panic(err)
	}

	return out
}

// MustDelete removes the value at path from a json body.
func MustDelete(body []byte, path string) []byte {
	out, err := sjson.DeleteBytes(body, path)
	if err != nil {
		panic(err)
	}

	return out
}

// WithResult swaps the base64 OBI payload of a request_search body.
func WithResult(body []byte, b64 string) []byte {
	return MustSet(body, ResultPath, b64)
}
