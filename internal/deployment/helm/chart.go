package helm

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// externalHostRewrites maps well-known external chart-repository hosts to
// their in-cluster service equivalent, so pods fetching a chart tgz that
// the control plane itself resolved from a public URL don't need egress
// (§4.3.5 step 1). Unlisted hosts are fetched as-is.
var externalHostRewrites = map[string]string{
	"charts.example5g.eu": "chart-museum.default.svc.cluster.local",
	"start5g-1.cs.uit.no":  "chart-museum.default.svc.cluster.local",
}

// ResolveChartSource returns a local filesystem path usable with LoadChart:
// if chartURL is already a local path (no scheme), it's returned unchanged;
// if it's an http(s) URL, the tgz is downloaded to a scratch directory
// under cacheDir, rewriting any well-known external host first.
func ResolveChartSource(chartURL, cacheDir string) (string, error) {
	u, err := url.Parse(chartURL)
	if err != nil || u.Scheme == "" {
		return chartURL, nil
	}

	rewritten := rewriteExternalHost(u)

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating chart cache dir: %w", err)
	}

	dest := filepath.Join(cacheDir, filepath.Base(rewritten.Path))
	if dest == cacheDir || filepath.Base(rewritten.Path) == "" {
		dest = filepath.Join(cacheDir, "chart.tgz")
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(rewritten.String())
	if err != nil {
		return "", fmt.Errorf("downloading chart from %s: %w", rewritten.String(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("downloading chart from %s: status %d", rewritten.String(), resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating chart file %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("writing chart file %s: %w", dest, err)
	}

	return dest, nil
}

func rewriteExternalHost(u *url.URL) *url.URL {
	host := u.Hostname()
	for external, inCluster := range externalHostRewrites {
		if strings.EqualFold(host, external) {
			rewritten := *u
			rewritten.Host = inCluster
			rewritten.Scheme = "http"
			return &rewritten
		}
	}
	return u
}
