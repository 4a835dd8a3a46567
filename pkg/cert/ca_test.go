package cert_test

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelmill/modelmill/pkg/cert"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

// startTLSServer serves 204 on a TLS listener using the given pair and
// reports whether a request ever reached the handler.
func startTLSServer(t *testing.T, pair *tls.Certificate) (*httptest.Server, *bool) {
	t.Helper()

	handled := false
	svr := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		w.WriteHeader(http.StatusNoContent)
	}))
	svr.TLS = &tls.Config{Certificates: []tls.Certificate{*pair}}
	svr.StartTLS()
	t.Cleanup(svr.Close)

	return svr, &handled
}

// localhostURL rewrites the test server's 127.0.0.1 address so the
// certificate is checked against its DNS name.
func localhostURL(svr *httptest.Server) string {
	parts := strings.Split(svr.URL, ":")
	return "https://localhost:" + parts[len(parts)-1]
}

func TestCA(t *testing.T) {
	ca := try.To(cert.NewCA()).OrFatal(t)
	server := try.To(ca.Certificate(
		cert.DNSName("localhost"),
		cert.IPAddress(net.IPv4(127, 0, 0, 1)),
	)).OrFatal(t)
	pair := try.To(server.TLSCert()).OrFatal(t)

	t.Run("a client pooling the CA accepts a server it signed", func(t *testing.T) {
		svr, handled := startTLSServer(t, pair)

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca.PEM()) {
			t.Fatal("the CA certificate does not pool")
		}
		client := http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: pool},
			},
		}

		resp := try.To(client.Get(localhostURL(svr))).OrFatal(t)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if !*handled {
			t.Error("the request did not reach the handler")
		}
	})

	t.Run("a client without the CA refuses the server", func(t *testing.T) {
		svr, handled := startTLSServer(t, pair)

		client := http.Client{}
		if _, err := client.Get(localhostURL(svr)); err == nil {
			t.Fatal("the request should fail on certificate verification")
		}
		if *handled {
			t.Error("no request should reach the handler")
		}
	})

	t.Run("the issued certificate carries the requested identities", func(t *testing.T) {
		blk, _ := pem.Decode(server.PEM())
		if blk == nil {
			t.Fatal("the server certificate is not PEM")
		}
		parsed := try.To(x509.ParseCertificate(blk.Bytes)).OrFatal(t)

		names := map[string]bool{}
		for _, n := range parsed.DNSNames {
			names[n] = true
		}
		if !names["localhost"] {
			t.Errorf("DNS names do not contain localhost: %v", parsed.DNSNames)
		}

		hasLoopback := false
		for _, ip := range parsed.IPAddresses {
			if ip.Equal(net.IPv4(127, 0, 0, 1)) {
				hasLoopback = true
			}
		}
		if !hasLoopback {
			t.Errorf("IP addresses do not contain 127.0.0.1: %v", parsed.IPAddresses)
		}
	})
}
