package opensearch

import (
	"context"
	"fmt"
	"net/http"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Config holds OpenSearch connection settings with environment variable mapping.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME" envDefault:""`
	Password     string   `env:"OPENSEARCH_PASSWORD" envDefault:""`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`

	// Transport overrides the HTTP round tripper, mainly for tests.
	Transport http.RoundTripper `env:"-"`
}

// New creates an OpenSearch client and verifies cluster connectivity with an
// immediate info call, failing fast when the cluster is unreachable.
func New(ctx context.Context, cfg Config) (*opensearchgo.Client, error) {
	client, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.DisableRetry,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := Healthcheck(client)(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Healthcheck returns a probe verifying cluster connectivity, suitable for
// readiness endpoints.
func Healthcheck(client *opensearchgo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := opensearchapi.InfoRequest{}.Do(ctx, client)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("%w: %s", ErrHealthcheckFailed, res.Status())
		}
		return nil
	}
}
