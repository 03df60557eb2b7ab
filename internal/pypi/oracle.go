// Package pypi checks distribution existence against the public PyPI JSON
// API, the fallback oracle used when a name isn't found in the local
// installed-distribution map.
package pypi

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Oracle queries https://pypi.org/pypi/<name>/json for existence.
type Oracle struct {
	client  *http.Client
	baseURL string
}

// NewOracle returns an Oracle using a client with defaultTimeout.
func NewOracle() *Oracle {
	return &Oracle{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: "https://pypi.org/pypi",
	}
}

// Exists reports whether name resolves to a published PyPI distribution. A
// transport failure is returned as an error rather than treated as
// nonexistence, so callers can distinguish "not found" from "couldn't ask".
func (o *Oracle) Exists(name string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return o.ExistsContext(ctx, name)
}

// ExistsContext is Exists with caller-supplied cancellation.
func (o *Oracle) ExistsContext(ctx context.Context, name string) (bool, error) {
	url := o.baseURL + "/" + name + "/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
