package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wasmatrix/wasmatrix/core"
)

// DefaultHTTPTimeout bounds outbound requests when no client is supplied.
const DefaultHTTPTimeout = 30 * time.Second

// maxResponseBytes bounds how much of a response body is returned to the
// guest.
const maxResponseBytes = 1 << 20

// HTTPProvider serves http capability invocations by issuing real outbound
// requests. When the invoking assignment carries http:domain:<host>
// permissions, requests are confined to those hosts.
type HTTPProvider struct {
	client *http.Client
}

// NewHTTPProvider returns a provider using the given client, or a default
// client with a 30 second timeout when nil.
func NewHTTPProvider(client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPProvider{client: client}
}

func (p *HTTPProvider) Type() core.ProviderType { return core.ProviderHTTP }

func (p *HTTPProvider) Invoke(ctx context.Context, inv Invocation) (map[string]any, error) {
	if inv.Operation != "request" {
		return nil, &UnknownOperationError{Provider: core.ProviderHTTP, Operation: inv.Operation}
	}

	rawURL, err := stringParam(inv.Params, "url")
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if err := checkDomainScope(inv.Permissions, u.Hostname()); err != nil {
		return nil, err
	}

	method := http.MethodGet
	if _, ok := inv.Params["method"]; ok {
		m, err := stringParam(inv.Params, "method")
		if err != nil {
			return nil, err
		}
		method = strings.ToUpper(m)
	}

	var body io.Reader
	if _, ok := inv.Params["body"]; ok {
		b, err := stringParam(inv.Params, "body")
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if headers, ok := inv.Params["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	headers := make(map[string]any, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return map[string]any{
		"status":  resp.StatusCode,
		"headers": headers,
		"body":    string(respBody),
	}, nil
}

// checkDomainScope allows any host when the permission list carries no
// http:domain entries, and otherwise requires the host to match one.
func checkDomainScope(permissions []string, host string) error {
	scoped := false
	for _, perm := range permissions {
		domain, ok := strings.CutPrefix(perm, core.PermHTTPHost)
		if !ok {
			continue
		}
		scoped = true
		if strings.EqualFold(domain, host) {
			return nil
		}
	}
	if scoped {
		return fmt.Errorf("host %q not permitted by domain scope", host)
	}
	return nil
}
