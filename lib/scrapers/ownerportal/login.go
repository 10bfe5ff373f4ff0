package ownerportal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"staysync/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// the login form carries an anti-forgery token in a hidden input named
// "security". the markup has drifted before (attribute order,
// quoting), so extraction tries an ordered list of independent
// matchers and the first hit wins.
type tokenMatcher func(html string) string

func matchTokenDocument(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return doc.Find("input[name=security]").AttrOr("value", "")
}

func matchTokenRegex(pattern string) tokenMatcher {
	re := regexp.MustCompile(pattern)
	return func(html string) string {
		groups := re.FindStringSubmatch(html)
		if len(groups) < 2 {
			return ""
		}
		return groups[1]
	}
}

var securityTokenMatchers = []tokenMatcher{
	matchTokenDocument,
	matchTokenRegex(`name="security"[^>]*value="([^"]+)"`),
	matchTokenRegex(`value="([^"]+)"[^>]*name="security"`),
	matchTokenRegex(`name='security'[^>]*value='([^']+)'`),
}

func extractSecurityToken(html string) string {
	for _, match := range securityTokenMatchers {
		if token := match(html); token != "" {
			return token
		}
	}
	return ""
}

// Login performs the two-step portal login: fetch the login page,
// pull the security token out of its HTML and post the credentials
// back. Success is the redirect to the owner dashboard. There are no
// retries; any failure is fatal to the run.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	page, err := c.get(ctx, c.opts.LoginPath, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}
	if page.Status != http.StatusOK {
		span.SetStatus(codes.Error, "login page fetch failed")
		return &AuthError{Reason: fmt.Sprintf("login page fetch failed: status %d", page.Status)}
	}

	token := extractSecurityToken(page.Text)
	if token == "" {
		span.SetStatus(codes.Error, "security token not found")
		return &AuthError{Reason: "security token not found in login page"}
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("security", token)

	loginUrl := c.BaseUrl.JoinPath(c.opts.LoginPath)
	res, err := c.request(ctx, http.MethodPost, c.opts.LoginPath, nil, form, map[string]string{
		"origin":       c.BaseUrl.String(),
		"referer":      loginUrl.String(),
		"content-type": "application/x-www-form-urlencoded",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return err
	}

	if isRedirect(res.Status) {
		location := res.Header.Get("Location")
		if strings.Contains(location, c.opts.DashboardPath) {
			return nil
		}
		span.SetStatus(codes.Error, "redirected somewhere other than the dashboard")
		return &AuthError{Reason: fmt.Sprintf("unexpected post-login redirect to %q", location)}
	}
	if res.Status == http.StatusOK && strings.Contains(res.Text, "Invalid") {
		span.SetStatus(codes.Error, "invalid credentials")
		return &AuthError{Reason: "invalid credentials"}
	}

	span.SetStatus(codes.Error, "unexpected login response")
	if title := htmlutil.PageTitle(res.Text); title != "" {
		return &AuthError{Reason: fmt.Sprintf("unexpected status %d from login (page: %q)", res.Status, title)}
	}
	return &AuthError{Reason: fmt.Sprintf("unexpected status %d from login", res.Status)}
}

func isRedirect(status int) bool {
	return status == http.StatusMovedPermanently ||
		status == http.StatusFound ||
		status == http.StatusSeeOther ||
		status == http.StatusTemporaryRedirect
}
