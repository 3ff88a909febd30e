// Package finago provides a client for the Finago (24SevenOffice) SOAP
// services together with extraction of its wire records into canonical,
// typed records suitable for the local sync store.
package finago

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"
)

// DefaultNS is the shared namespace of the CRM, person, invoice and product
// services.
const DefaultNS = "http://24sevenOffice.com/webservices"

// AccountingNS is the namespace of the accounting (transaction) service.
const AccountingNS = "http://24sevenoffice.com/webservices/economy/accounting"

// defaultTimeout bounds each SOAP call.
const defaultTimeout = 30 * time.Second

// sessionCookieName carries the session token on every request.
const sessionCookieName = "ASP.NET_SessionId"

// Client is a minimal SOAP 1.1 client for one service endpoint. The session
// token obtained from the authentication service is attached as a cookie to
// every call.
type Client struct {
	endpoint   string
	ns         string
	sessionID  string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a SOAP client for the given endpoint URL. If httpClient
// is nil a client with the default per-call timeout is used. If logger is
// nil a text logger writing to stdout is used.
func NewClient(endpoint, namespace string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(
			os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo},
		))
	}
	return &Client{
		endpoint:   endpoint,
		ns:         namespace,
		httpClient: httpClient,
		log:        logger,
	}
}

// SetSession attaches the session token to all subsequent calls.
func (c *Client) SetSession(sessionID string) {
	c.sessionID = sessionID
}

// SessionID returns the session token currently attached to the client.
func (c *Client) SessionID() string {
	return c.sessionID
}

// envelope wraps inner XML in a SOAP 1.1 envelope.
func envelope(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
               xmlns:xsd="http://www.w3.org/2001/XMLSchema"
               xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    ` + inner + `
  </soap:Body>
</soap:Envelope>`
}

// Call performs one SOAP exchange, posting inner wrapped in an envelope
// with the SOAPAction header set to "<namespace>/<action>", and returns the
// parsed response document. No business logic lives here; the response is
// returned unmodified.
func (c *Client) Call(ctx context.Context, action, inner string) (Node, error) {
	body := envelope(inner)
	soapAction := fmt.Sprintf("%s/%s", c.ns, action)

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", action, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(fmt.Sprintf("%s: failed to execute request: %v", action, err))
		return nil, fmt.Errorf("failed to execute %s request: %w", action, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Dump the full exchange; SOAP faults arrive as 400/500 responses
		// and the detail is needed to diagnose them.
		c.log.Error(fmt.Sprintf("%s: API error (status %d)", action, resp.StatusCode),
			"url", c.endpoint,
			"soapAction", soapAction,
			"request", body,
			"response", string(respBody),
		)
		return nil, fmt.Errorf("%s API error (status %d): %s", action, resp.StatusCode, string(respBody))
	}

	m, err := mxj.NewMapXml(respBody)
	if err != nil {
		c.log.Error(fmt.Sprintf("%s: failed to decode response: %v", action, err))
		return nil, fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return Node(m), nil
}

// responseBody locates the soap Body of a parsed document, accepting both
// prefixed and unprefixed envelope element names.
func responseBody(doc Node) Node {
	env := NodeOf(doc, "soap:Envelope")
	if env == nil {
		env = NodeOf(doc, "Envelope")
	}
	body := NodeOf(env, "soap:Body")
	if body == nil {
		body = NodeOf(env, "Body")
	}
	return body
}

// resultOf drills from a parsed document to the <XxxResult> element of the
// named response, collapsing list wrapping at each level.
func resultOf(doc Node, response, result string) Node {
	return NodeOf(NodeOf(responseBody(doc), response), result)
}

// NormalizeChangedAfter ensures a changed-after filter value carries a full
// datetime as required by the services: "2024-01-01" becomes
// "2024-01-01T00:00:00" while values already holding a time component pass
// through unchanged.
func NormalizeChangedAfter(changedAfter string) string {
	if strings.Contains(changedAfter, "T") {
		return changedAfter
	}
	return changedAfter + "T00:00:00"
}

// xmlStrings renders property names as a run of <string> elements for the
// return-property lists the services require.
func xmlStrings(props []string) string {
	var b bytes.Buffer
	for _, p := range props {
		fmt.Fprintf(&b, "<string>%s</string>", p)
	}
	return b.String()
}
