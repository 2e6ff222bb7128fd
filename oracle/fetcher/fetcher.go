package fetcher

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	errorsmod "cosmossdk.io/errors"
	"github.com/armon/go-metrics"
	"github.com/tidwall/gjson"

	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

const (
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 30 * time.Second

	userAgent    = "bandfeed/1.0"
	maxErrorBody = 256

	opOracleScript  = "oracle_script"
	opRequestSearch = "request_search"
)

// Params identify the oracle request to look up.
type Params struct {
	OracleScriptID uint64
	Calldata       string // hex
	MinCount       uint64
	AskCount       uint64
}

// Validate checks the params against what the oracle module accepts.
func (p Params) Validate() error {
	if p.OracleScriptID == 0 {
		return errorsmod.Wrap(types.ErrInvalidParams, "oracle script id must be positive")
	}

	if _, err := hex.DecodeString(p.Calldata); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidParams, "calldata is not hex: %v", err)
	}

	if p.MinCount == 0 {
		return errorsmod.Wrap(types.ErrInvalidParams, "min count must be positive")
	}

	if p.MinCount > p.AskCount {
		return errorsmod.Wrapf(types.ErrInvalidParams, "min count %d exceeds ask count %d", p.MinCount, p.AskCount)
	}

	return nil
}

type Option func(*Fetcher)

// WithHTTPClient replaces the client built by New; the timeout option is
// then ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithMetrics records into m instead of the go-metrics global instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// Fetcher reads oracle scripts and resolved requests from a BandChain REST
// gateway. It holds no state between calls.
type Fetcher struct {
	endpoint string
	params   Params
	timeout  time.Duration
	client   *http.Client
	metrics  *metrics.Metrics
}

// New validates endpoint and params and builds the HTTP client.
func New(endpoint string, params Params, opts ...Option) (*Fetcher, error) {
	base, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	f := &Fetcher{
		endpoint: base,
		params:   params,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		if f.client, err = newHTTPClient(f.timeout); err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidParams, err.Error())
		}
	}

	if f.metrics == nil {
		f.metrics = metrics.Default()
	}

	return f, nil
}

func parseEndpoint(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrInvalidParams, "endpoint: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errorsmod.Wrapf(types.ErrInvalidParams, "endpoint %q must be an http(s) url", endpoint)
	}

	if u.Host == "" {
		return "", errorsmod.Wrapf(types.ErrInvalidParams, "endpoint %q has no host", endpoint)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

func (f *Fetcher) Params() Params {
	return f.params
}

// OracleScript fetches the metadata of the configured oracle script.
func (f *Fetcher) OracleScript(ctx context.Context) (script types.OracleScript, err error) {
	defer f.observe(opOracleScript, time.Now(), &err)

	body, err := f.get(ctx, f.oracleScriptURL())
	if err != nil {
		return types.OracleScript{}, err
	}

	return types.ParseOracleScript(body)
}

// Request fetches the latest resolved request matching the params.
func (f *Fetcher) Request(ctx context.Context) (res types.RequestResult, err error) {
	defer f.observe(opRequestSearch, time.Now(), &err)

	return f.request(ctx)
}

// RequestData fetches the latest resolved request and decodes its price.
func (f *Fetcher) RequestData(ctx context.Context) (uint64, error) {
	_, price, err := f.RequestPrice(ctx)
	if err != nil {
		return 0, err
	}

	return price.Px, nil
}

// RequestPrice is RequestData keeping the request record. Fetching and
// decoding are observed as one request_search call.
func (f *Fetcher) RequestPrice(ctx context.Context) (res types.RequestResult, price types.Price, err error) {
	defer f.observe(opRequestSearch, time.Now(), &err)

	res, err = f.request(ctx)
	if err != nil {
		return types.RequestResult{}, types.Price{}, err
	}

	price, err = res.Price()
	if err != nil {
		return types.RequestResult{}, types.Price{}, err
	}

	log.Debugf("request %d resolved at %d: px=%d",
		res.Result.Result.ResponsePacketData.RequestID,
		res.Result.Result.ResponsePacketData.ResolveTime,
		price.Px,
	)

	return res, price, nil
}

func (f *Fetcher) request(ctx context.Context) (types.RequestResult, error) {
	body, err := f.get(ctx, f.requestSearchURL())
	if err != nil {
		return types.RequestResult{}, err
	}

	return types.ParseRequestResult(body)
}

func (f *Fetcher) oracleScriptURL() string {
	return fmt.Sprintf("%s/oracle/oracle_scripts/%d", f.endpoint, f.params.OracleScriptID)
}

func (f *Fetcher) requestSearchURL() string {
	return fmt.Sprintf("%s/oracle/request_search?oid=%d&calldata=%s&min_count=%d&ask_count=%d",
		f.endpoint,
		f.params.OracleScriptID,
		url.QueryEscape(f.params.Calldata),
		f.params.MinCount,
		f.params.AskCount,
	)
}

// get performs one GET and returns the body of a 2xx answer holding json.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidParams, "failed to create request: %v", err)
	}

	// The gateway expects a json content type even on GET.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Debugf("GET %s", rawURL)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", types.ErrTransport, err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &types.StatusError{
			Code:   res.StatusCode,
			Status: res.Status,
			Body:   truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, errorsmod.Wrapf(types.ErrDecode, "body of %s is not valid json", req.URL.Path)
	}

	log.Debugf("%s answered at height %s", req.URL.Path, gjson.GetBytes(body, "height").String())

	return body, nil
}

func (f *Fetcher) observe(op string, start time.Time, err *error) {
	f.metrics.MeasureSinceWithLabels([]string{"fetch", "latency"}, start, labels(op, nil))

	if *err != nil {
		f.metrics.IncrCounterWithLabels([]string{"fetch", "error"}, 1, labels(op, *err))
		log.Errorf("%s from %s failed: %v", op, f.endpoint, *err)
		return
	}

	f.metrics.IncrCounterWithLabels([]string{"fetch", "success"}, 1, labels(op, nil))
}

func labels(op string, err error) []metrics.Label {
	ls := []metrics.Label{{Name: "op", Value: op}}
	if err != nil {
		ls = append(ls, metrics.Label{Name: "kind", Value: types.ErrorKind(err)})
	}

	return ls
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n] + "..."
}
