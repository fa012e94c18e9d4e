// Package dorks holds the search-query catalog used for domain discovery.
// A dork is a crafted search-engine query intended to surface files and
// pages unintentionally exposed by misconfiguration.
package dorks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Category groups dork templates by what they hunt for. Templates contain
// the {domain} placeholder.
type Category struct {
	Key       string
	Name      string
	Templates []string
}

// Categories returns the full catalog in fixed order.
func Categories() []Category {
	return []Category{
		{
			Key:  "admin_panels",
			Name: "Admin Panels & Login Pages",
			Templates: []string{
				`site:{domain} inurl:admin`,
				`site:{domain} inurl:login`,
				`site:{domain} inurl:administrator`,
				`site:{domain} inurl:auth`,
				`site:{domain} intitle:"admin panel"`,
				`site:{domain} intitle:"login page"`,
				`site:{domain} inurl:wp-admin`,
				`site:{domain} inurl:controlpanel`,
				`site:{domain} inurl:admincp`,
			},
		},
		{
			Key:  "config_files",
			Name: "Configuration Files",
			Templates: []string{
				`site:{domain} ext:env`,
				`site:{domain} ext:ini`,
				`site:{domain} ext:config`,
				`site:{domain} ext:conf`,
				`site:{domain} inurl:config`,
				`site:{domain} intitle:"index of" config`,
				`site:{domain} filetype:env "DB_PASSWORD"`,
				`site:{domain} filetype:ini "password"`,
				`site:{domain} inurl:web.config`,
				`site:{domain} ext:cfg`,
			},
		},
		{
			Key:  "databases",
			Name: "Database Files & Backups",
			Templates: []string{
				`site:{domain} ext:sql`,
				`site:{domain} ext:db`,
				`site:{domain} ext:dbf`,
				`site:{domain} ext:mdb`,
				`site:{domain} inurl:backup`,
				`site:{domain} inurl:dump`,
				`site:{domain} filetype:sql "INSERT INTO"`,
				`site:{domain} filetype:sql "CREATE TABLE"`,
				`site:{domain} intitle:"index of" backup`,
				`site:{domain} ext:bak`,
				`site:{domain} ext:backup`,
			},
		},
		{
			Key:  "logs",
			Name: "Log Files",
			Templates: []string{
				`site:{domain} ext:log`,
				`site:{domain} filetype:log`,
				`site:{domain} inurl:log`,
				`site:{domain} intitle:"index of" logs`,
				`site:{domain} filetype:log "password"`,
				`site:{domain} ext:txt inurl:error`,
			},
		},
		{
			Key:  "documents",
			Name: "Exposed Documents",
			Templates: []string{
				`site:{domain} ext:pdf`,
				`site:{domain} ext:doc`,
				`site:{domain} ext:docx`,
				`site:{domain} ext:xls`,
				`site:{domain} ext:xlsx`,
				`site:{domain} ext:ppt`,
				`site:{domain} ext:txt`,
				`site:{domain} filetype:pdf "confidential"`,
				`site:{domain} filetype:doc "internal"`,
			},
		},
		{
			Key:  "source_code",
			Name: "Source Code & Version Control",
			Templates: []string{
				`site:{domain} ext:php`,
				`site:{domain} ext:asp`,
				`site:{domain} ext:aspx`,
				`site:{domain} ext:jsp`,
				`site:{domain} ext:java`,
				`site:{domain} ext:py`,
				`site:{domain} inurl:.git`,
				`site:{domain} inurl:.svn`,
				`site:{domain} intitle:"index of" .git`,
				`site:{domain} filetype:php "mysql_connect"`,
			},
		},
		{
			Key:  "api",
			Name: "API Endpoints & Keys",
			Templates: []string{
				`site:{domain} inurl:api`,
				`site:{domain} inurl:/v1/`,
				`site:{domain} inurl:/api/v1`,
				`site:{domain} filetype:json`,
				`site:{domain} "api_key"`,
				`site:{domain} "apikey"`,
				`site:{domain} "api key"`,
				`site:{domain} intext:"api token"`,
			},
		},
		{
			Key:  "errors",
			Name: "Error Pages & Debug Info",
			Templates: []string{
				`site:{domain} intext:"sql syntax"`,
				`site:{domain} intext:"mysql"`,
				`site:{domain} intext:"syntax error"`,
				`site:{domain} intext:"warning: mysql"`,
				`site:{domain} inurl:error`,
				`site:{domain} intitle:"error"`,
				`site:{domain} "Fatal error"`,
				`site:{domain} "stack trace"`,
			},
		},
		{
			Key:  "directories",
			Name: "Sensitive Directories",
			Templates: []string{
				`site:{domain} intitle:"index of /"`,
				`site:{domain} intitle:"index of" uploads`,
				`site:{domain} intitle:"index of" files`,
				`site:{domain} intitle:"index of" downloads`,
				`site:{domain} intitle:"index of" images`,
				`site:{domain} intitle:"index of" temp`,
				`site:{domain} intitle:"index of" backup`,
			},
		},
		{
			Key:  "subdomains",
			Name: "Subdomain Discovery",
			Templates: []string{
				`site:*.{domain}`,
				`site:*.{domain} -www`,
			},
		},
		{
			Key:  "emails",
			Name: "Email Addresses",
			Templates: []string{
				`site:{domain} intext:"@{domain}"`,
				`site:{domain} "email" "@{domain}"`,
			},
		},
	}
}

// ForDomain expands every template in the catalog for the target domain,
// in catalog order.
func ForDomain(domain string) []string {
	var queries []string
	for _, cat := range Categories() {
		for _, tmpl := range cat.Templates {
			queries = append(queries, strings.ReplaceAll(tmpl, "{domain}", domain))
		}
	}
	return queries
}

// NormalizeDomain strips scheme and www prefix from user input so dork
// templates receive a bare domain.
func NormalizeDomain(raw string) string {
	domain := strings.TrimSpace(raw)
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "www.")
	return strings.TrimSuffix(domain, "/")
}

// LoadFile reads one dork per line from a text file. Blank lines and
// lines starting with # are skipped.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dork file: %w", err)
	}
	defer f.Close()

	dorks, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read dork file: %w", err)
	}
	return dorks, nil
}

// Parse reads one dork per line from r. Blank lines and lines starting
// with # are skipped.
func Parse(r io.Reader) ([]string, error) {
	var dorks []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dorks = append(dorks, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dorks, nil
}
