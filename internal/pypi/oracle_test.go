package pypi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExistsContextFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := &Oracle{client: srv.Client(), baseURL: srv.URL}
	ok, err := o.ExistsContext(t.Context(), "requests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected exists=true")
	}
}

func TestExistsContextNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := &Oracle{client: srv.Client(), baseURL: srv.URL}
	ok, err := o.ExistsContext(t.Context(), "totally-made-up-package-xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected exists=false")
	}
}

func TestNewOracleDefaults(t *testing.T) {
	o := NewOracle()
	if o.baseURL != "https://pypi.org/pypi" {
		t.Errorf("unexpected baseURL: %s", o.baseURL)
	}
	if o.client.Timeout != defaultTimeout {
		t.Errorf("unexpected timeout: %v", o.client.Timeout)
	}
}
