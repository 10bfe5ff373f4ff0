package ownerportal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"staysync/lib/restyutil"
	"staysync/lib/telemetry"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/ownerportal")

// default headers sent on every request. the portal has no public API
// and serves browsers only, so the client looks like one. callers can
// override any of these per request.
var browserHeaders = map[string]string{
	"user-agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"accept-language": "en-US,en;q=0.9",
	"accept-encoding": "gzip, deflate, br",
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	opts    ClientOptions
	cookies *cookieStore
	bearer  string

	// overridable for tests; sleeps a jittered duration between
	// listing pages
	pageDelay func(ctx context.Context) error
}

type ClientOptions struct {
	// portal subdomain, e.g. "acme" resolves to
	// https://acme.trackhs.com
	Domain string
	// overrides the URL derived from Domain when set
	BaseUrl string
	// a pre-obtained session cookie string such as
	// "TrackOwner=abc123"; when set, Login is unnecessary
	SessionCookie string

	// the login endpoints below are an educated guess about the
	// portal and therefore configurable rather than fixed
	LoginPath string
	// fragment the post-login redirect Location must contain
	DashboardPath    string
	TokenPath        string
	ReservationsPath string

	Timeout time.Duration
}

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables dumping of every raw request and
// response pair for clients constructed afterwards.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = fmt.Sprintf("https://%s.trackhs.com", o.Domain)
	}
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}
	if o.DashboardPath == "" {
		o.DashboardPath = "/owner/dashboard/"
	}
	if o.TokenPath == "" {
		o.TokenPath = "/owner/api-token"
	}
	if o.ReservationsPath == "" {
		o.ReservationsPath = "/owner/reservations/search"
	}
	if o.Timeout == 0 {
		o.Timeout = time.Second * 30
	}
	return o
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	opts = opts.withDefaults()

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(opts.Timeout)
	// the client owns cookies and decompression itself: resty's jar
	// would send a second Cookie header next to the store's, and its
	// automatic gunzip would consume the encoded bytes before the
	// Content-Encoding switch sees them
	client.SetCookieJar(nil)
	client.SetDoNotParseResponse(true)
	// redirects are never followed: login success is signaled by the
	// redirect response itself
	client.GetClient().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "scrapers/ownerportal/http")
	if restyInstrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
	}

	cookies := newCookieStore()
	if opts.SessionCookie != "" {
		for _, pair := range strings.Split(opts.SessionCookie, ";") {
			cookies.apply(strings.TrimSpace(pair))
		}
	}

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		opts:    opts,
		cookies: cookies,
	}
	c.pageDelay = c.jitterDelay
	return c, nil
}

// HasSession reports whether the client already holds portal cookies,
// in which case Login can be skipped.
func (c *Client) HasSession() bool {
	return c.cookies.len() > 0
}

// request issues one HTTP call with browser headers, the accumulated
// cookies and the bearer token (once acquired), then folds the
// response into an Envelope. Set-Cookie headers on the response update
// the client's cookie set before anything else happens.
func (c *Client) request(
	ctx context.Context,
	method, path string,
	query url.Values,
	form url.Values,
	headers map[string]string,
) (*Envelope, error) {
	req := c.Http.R().SetContext(ctx)

	for k, v := range browserHeaders {
		req.SetHeader(k, v)
	}
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	if c.cookies.len() > 0 {
		req.SetHeader("cookie", c.cookies.header())
	}
	if c.bearer != "" {
		req.SetHeader("authorization", "Bearer "+c.bearer)
	}

	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if form != nil {
		req.SetFormDataFromValues(form)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer res.RawBody().Close()

	for _, sc := range res.Header().Values("Set-Cookie") {
		c.cookies.apply(sc)
	}

	raw, err := io.ReadAll(res.RawBody())
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	body, err := decompress(res.Header().Get("Content-Encoding"), raw)
	if err != nil {
		return nil, err
	}

	return newEnvelope(res.StatusCode(), res.Header(), body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, headers map[string]string) (*Envelope, error) {
	return c.request(ctx, http.MethodGet, path, query, nil, headers)
}
