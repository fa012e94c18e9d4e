// Package osint surfaces service-level exposure for a target domain by
// resolving it and querying the Shodan host API. A missing API key is a
// valid disabled state, never an error.
package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

// ServiceExposure flags one high-risk open service.
type ServiceExposure struct {
	Port          int              `json:"port"`
	Service       string           `json:"service"`
	BannerSnippet string           `json:"banner_snippet,omitempty"`
	Severity      finding.Severity `json:"severity"`
}

// Footprint is the network exposure summary for one domain.
// Enabled=false means the explorer had no credentials; Error is set when
// the lookup itself failed. Both are non-fatal outcomes.
type Footprint struct {
	Enabled   bool              `json:"enabled"`
	Domain    string            `json:"domain,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Ports     []int             `json:"ports,omitempty"`
	Vulns     []string          `json:"vulns,omitempty"`
	Exposures []ServiceExposure `json:"exposures,omitempty"`
	Org       string            `json:"org,omitempty"`
	OS        string            `json:"os,omitempty"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Resolver resolves a hostname to addresses. Matches net.Resolver.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Explorer queries Shodan for open ports and banners.
type Explorer struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	resolver   Resolver
}

// NewExplorer creates an explorer. An empty apiKey yields a disabled
// explorer whose Scan reports Enabled=false.
func NewExplorer(apiKey string) *Explorer {
	return &Explorer{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaults.OSINTTimeout},
		baseURL:    "https://api.shodan.io",
		resolver:   net.DefaultResolver,
	}
}

// Enabled reports whether the explorer has credentials.
func (e *Explorer) Enabled() bool { return e.apiKey != "" }

// redactAPIKey removes the API key from error messages to prevent leakage
// in logs and events.
func redactAPIKey(err error, key string) string {
	if err == nil {
		return ""
	}
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "[REDACTED]")
}

// Scan resolves the domain and fetches its Shodan host record. Never
// returns an error: failures are reported inside the footprint and the
// caller continues with whatever data is available.
func (e *Explorer) Scan(ctx context.Context, domain string) *Footprint {
	fp := &Footprint{Domain: domain}
	if !e.Enabled() {
		fp.Message = "Shodan API key missing"
		return fp
	}
	fp.Enabled = true

	addrs, err := e.resolver.LookupHost(ctx, domain)
	if err != nil || len(addrs) == 0 {
		fp.Error = fmt.Sprintf("resolve %s: %s", domain, redactAPIKey(err, e.apiKey))
		return fp
	}
	fp.IP = addrs[0]

	host, err := e.fetchHost(ctx, fp.IP)
	if err != nil {
		fp.Error = redactAPIKey(err, e.apiKey)
		return fp
	}

	fp.Ports = host.Ports
	fp.Vulns = host.Vulns
	fp.Org = host.Org
	fp.OS = host.OS
	for _, svc := range host.Data {
		if !defaults.IsHighRiskPort(svc.Port) {
			continue
		}
		banner := strings.ReplaceAll(svc.Data, "\n", " ")
		if len(banner) > 100 {
			banner = banner[:100]
		}
		service := svc.Product
		if service == "" {
			service = "Unknown"
		}
		fp.Exposures = append(fp.Exposures, ServiceExposure{
			Port:          svc.Port,
			Service:       service,
			BannerSnippet: banner,
			Severity:      finding.SeverityHigh,
		})
	}
	return fp
}

type hostRecord struct {
	Ports []int    `json:"ports"`
	Vulns []string `json:"vulns"`
	Org   string   `json:"org"`
	OS    string   `json:"os"`
	Data  []struct {
		Port    int    `json:"port"`
		Product string `json:"product"`
		Data    string `json:"data"`
	} `json:"data"`
}

func (e *Explorer) fetchHost(ctx context.Context, ip string) (*hostRecord, error) {
	url := fmt.Sprintf("%s/shodan/host/%s?key=%s", e.baseURL, ip, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shodan API error: %d", resp.StatusCode)
	}

	var host hostRecord
	if err := json.NewDecoder(resp.Body).Decode(&host); err != nil {
		return nil, err
	}
	return &host, nil
}
