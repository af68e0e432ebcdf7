package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/onflow/flow-attestation/utils/unittest"
)

func testConfig(endpoint string) HTTPConfig {
	return HTTPConfig{
		Endpoint:     endpoint,
		Timeout:      time.Second,
		MaxFailures:  2,
		ResetTimeout: time.Minute,
	}
}

func TestHTTPIssuer_Issue(t *testing.T) {
	owner := unittest.AddressFixture()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req issueRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, owner.Hex(), req.Owner)
		assert.Equal(t, "ipfs://meta", req.MetadataRef)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(issueResponse{ArtifactID: 17})
	}))
	defer server.Close()

	issuer := NewHTTPIssuer(unittest.Logger(), testConfig(server.URL))
	artifactID, err := issuer.IssueArtifact(context.Background(), owner, "ipfs://meta")
	require.NoError(t, err)
	assert.Equal(t, uint64(17), artifactID)
}

func TestHTTPIssuer_EmptyArtifactID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(issueResponse{})
	}))
	defer server.Close()

	issuer := NewHTTPIssuer(unittest.Logger(), testConfig(server.URL))
	_, err := issuer.IssueArtifact(context.Background(), unittest.AddressFixture(), "ref")
	assert.Error(t, err)
}

// After MaxFailures consecutive failures the breaker opens and the service
// is no longer called.
func TestHTTPIssuer_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		http.Error(w, "minting paused", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	issuer := NewHTTPIssuer(unittest.Logger(), testConfig(server.URL))
	for i := 0; i < 2; i++ {
		_, err := issuer.IssueArtifact(context.Background(), unittest.AddressFixture(), "ref")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}

	_, err := issuer.IssueArtifact(context.Background(), unittest.AddressFixture(), "ref")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}
