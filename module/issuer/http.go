package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/onflow/flow-attestation/module"
)

// ErrUnavailable is returned while the circuit breaker refuses calls to the
// minting service after repeated failures.
var ErrUnavailable = errors.New("artifact issuer unavailable")

// HTTPConfig configures the client of the external minting service.
type HTTPConfig struct {
	// Endpoint is the URL artifacts are requested from.
	Endpoint string
	// Timeout bounds a single request.
	Timeout time.Duration
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// ResetTimeout is how long the breaker stays open before probing again.
	ResetTimeout time.Duration
}

type issueRequest struct {
	Owner       string `json:"owner"`
	MetadataRef string `json:"metadata_ref"`
}

type issueResponse struct {
	ArtifactID uint64 `json:"artifact_id"`
}

// HTTPIssuer requests artifacts from an external minting service over HTTP.
// Calls go through a circuit breaker, so a failing service is not hammered
// by retries and callers fail fast with ErrUnavailable.
type HTTPIssuer struct {
	log      zerolog.Logger
	client   *http.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker
}

var _ module.ArtifactIssuer = (*HTTPIssuer)(nil)

func NewHTTPIssuer(log zerolog.Logger, config HTTPConfig) *HTTPIssuer {
	log = log.With().Str("component", "http_issuer").Logger()
	return &HTTPIssuer{
		log:      log,
		client:   &http.Client{Timeout: config.Timeout},
		endpoint: config.Endpoint,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "artifact_issuer",
			MaxRequests: 1,
			Timeout:     config.ResetTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.MaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		}),
	}
}

// IssueArtifact requests a new artifact for the owner.
func (h *HTTPIssuer) IssueArtifact(ctx context.Context, owner common.Address, metadataRef string) (uint64, error) {
	result, err := h.breaker.Execute(func() (interface{}, error) {
		return h.post(ctx, owner, metadataRef)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	if err != nil {
		return 0, err
	}
	return result.(uint64), nil
}

func (h *HTTPIssuer) post(ctx context.Context, owner common.Address, metadataRef string) (uint64, error) {
	body, err := json.Marshal(issueRequest{
		Owner:       owner.Hex(),
		MetadataRef: metadataRef,
	})
	if err != nil {
		return 0, fmt.Errorf("could not encode issue request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("could not create issue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("issue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("issuer responded with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var issued issueResponse
	err = json.NewDecoder(resp.Body).Decode(&issued)
	if err != nil {
		return 0, fmt.Errorf("could not decode issue response: %w", err)
	}
	if issued.ArtifactID == 0 {
		return 0, fmt.Errorf("issuer returned empty artifact id")
	}
	return issued.ArtifactID, nil
}
