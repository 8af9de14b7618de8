package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPrivateAddressesStayLocal(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, logging.NewDiscardLogger())

	for _, ip := range []string{"127.0.0.1", "::1", "10.0.0.5", "192.168.1.10", "172.16.0.1", "0.0.0.0", "not-an-ip", ""} {
		loc := client.Lookup(context.Background(), ip)
		require.NotNil(t, loc, "ip %q", ip)
		assert.Equal(t, LocalCountry, loc.Country, "ip %q", ip)
	}
	assert.Zero(t, requests, "private and malformed addresses never hit the network")
}

func TestLookupSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","country":"France","city":"Nice","regionName":"Provence-Alpes-Côte d'Azur"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second, logging.NewDiscardLogger())
	loc := client.Lookup(context.Background(), "203.0.113.7")

	require.NotNil(t, loc)
	assert.Equal(t, "France", loc.Country)
	assert.Equal(t, "Nice", loc.City)
	assert.Equal(t, "Provence-Alpes-Côte d'Azur", loc.Region)
}

func TestLookupFailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"provider rejects", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"fail"}`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			client := NewClient(ts.URL, time.Second, logging.NewDiscardLogger())
			assert.Nil(t, client.Lookup(context.Background(), "203.0.113.7"))
		})
	}
}

func TestLookupUnreachableEndpointReturnsNil(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 50*time.Millisecond, logging.NewDiscardLogger())
	assert.Nil(t, client.Lookup(context.Background(), "203.0.113.7"))
}
