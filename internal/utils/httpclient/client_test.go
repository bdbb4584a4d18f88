package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"LeagueSync/internal/config"

	"github.com/sirupsen/logrus"
)

func TestCompressedTransportDecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("Season 3: Table 7"))
		_ = gz.Close()
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, logrus.New())
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "Season 3: Table 7" {
		t.Fatalf("body = %q", body)
	}
}

func TestNewHTTPClientBadProxyIgnored(t *testing.T) {
	client := NewHTTPClient(&config.SourceConfig{Proxy: "://bad", Timeout: 0}, logrus.New())
	if client.Timeout <= 0 {
		t.Fatalf("timeout not defaulted: %v", client.Timeout)
	}
}
