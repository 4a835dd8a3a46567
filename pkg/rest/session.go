// Package rest is the Modelmill platform client: an authenticated
// Session and one client per platform service.
package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/modelmill/modelmill/pkg/utils"
)

// ClientID identifies this client to the authorization service.
const ClientID = "modelmill.client"

// Config tells a Session where and how to reach the platform.
type Config struct {
	// APIRoot is the base URL of the platform, like "https://mill.example.com".
	APIRoot string

	// User and Password are the credentials for the password grant.
	User     string
	Password string

	// CACert is an extra CA certificate to trust, as base64-encoded PEM.
	CACert string

	// SkipVerify disables TLS certificate verification.
	SkipVerify bool
}

func (c Config) Verify() error {
	if c.APIRoot == "" {
		return fmt.Errorf("apiRoot is required")
	}
	if _, err := url.Parse(c.APIRoot); err != nil {
		return fmt.Errorf("apiRoot is not a URL: %w", err)
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	return nil
}

// Session is an authenticated connection to the platform.
//
// It obtains an access token lazily via the OAuth password grant and
// renews it when the token's own expiry claim says it is stale.
// A Session is not safe for concurrent use.
type Session struct {
	httpclient *http.Client
	api        string
	user       string
	password   string
	verify     bool
	cacert     string

	token  string
	expiry time.Time
}

// NewSession builds a Session from a Config.
func NewSession(c Config) (*Session, error) {
	if err := c.Verify(); err != nil {
		return nil, err
	}

	httpclient, err := newHTTPClient(c.CACert, c.SkipVerify)
	if err != nil {
		return nil, err
	}

	return &Session{
		httpclient: httpclient,
		api:        strings.TrimSuffix(c.APIRoot, "/"),
		user:       c.User,
		password:   c.Password,
		verify:     !c.SkipVerify,
		cacert:     c.CACert,
	}, nil
}

func newHTTPClient(cacert string, skipVerify bool) (*http.Client, error) {
	httpclient := new(http.Client)
	if cacert != "" {
		hc, err := trustCa(httpclient, []string{cacert})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}
	if skipVerify {
		hc, err := relaxVerify(httpclient)
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}
	return httpclient, nil
}

// URL builds an URL under the session's API root.
func (s *Session) URL(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{s.api}, path...), "/")
}

// Verifying answers whether the session verifies TLS certificates.
func (s *Session) Verifying() bool {
	return s.verify
}

// Do sends req with a valid bearer token attached.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if err := s.ensureToken(req.Context()); err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.httpclient.Do(req)
}

func (s *Session) ensureToken(ctx context.Context) error {
	if s.token != "" && time.Now().Before(s.expiry) {
		return nil
	}
	return s.authenticate(ctx)
}

func (s *Session) authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", s.user)
	form.Set("password", s.password)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.URL("oauth/token"),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(ClientID, "")

	resp, err := s.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthorizationError{
			Endpoint: "/oauth/token",
			Message:  "authentication failed. Check the user and password in your profile.",
		}
	}

	grant := struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}{}
	if err := unmarshalJsonResponse(resp, &grant, MessageFor{
		Status4xx: "authentication refused",
		Status5xx: "authorization service failed",
	}); err != nil {
		return err
	}
	if grant.AccessToken == "" {
		return fmt.Errorf("authorization service replied without access_token")
	}

	s.token = grant.AccessToken
	s.expiry = tokenExpiry(grant.AccessToken, grant.ExpiresIn)
	return nil
}

// expirySkew renews tokens slightly before their actual end of life,
// so a request started now does not arrive expired.
const expirySkew = 30 * time.Second

// tokenExpiry reads the token's exp claim without verifying the
// signature. Verification is the platform's job; the client inspects
// the claim only to decide when to re-authenticate. When the token is
// not a JWT or lacks the claim, the grant's expires_in is used.
func tokenExpiry(token string, expiresIn int) time.Time {
	fallback := time.Now().Add(time.Duration(expiresIn) * time.Second)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fallback.Add(-expirySkew)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback.Add(-expirySkew)
	}
	return exp.Time.Add(-expirySkew)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	tran, err := ownTransport(hc)
	if err != nil {
		return nil, err
	}

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}

func relaxVerify(hc *http.Client) (*http.Client, error) {
	tran, err := ownTransport(hc)
	if err != nil {
		return nil, err
	}

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}
	tcc.InsecureSkipVerify = true

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}

// ownTransport gives hc a transport of its own, never shared with
// other clients.
func ownTransport(hc *http.Client) (*http.Transport, error) {
	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to reconfigure http transport")
	}
	return tran.Clone(), nil
}

func marshalJSONBody(v any) (*strings.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(string(b)), nil
}
