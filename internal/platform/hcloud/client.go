package hcloud

import (
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/prometheus/client_golang/prometheus"
)

// RealClient talks to the Hetzner Cloud API.
type RealClient struct {
	client *hcloud.Client
}

type clientOptions struct {
	endpoint   string
	appName    string
	appVersion string
	registerer prometheus.Registerer
}

// ClientOption configures a RealClient.
type ClientOption func(*clientOptions)

// WithEndpoint sets the API endpoint, e.g. for a proxy or a test server.
func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithApplication sets the application name and version sent in the User-Agent.
func WithApplication(name, version string) ClientOption {
	return func(o *clientOptions) {
		o.appName = name
		o.appVersion = version
	}
}

// WithInstrumentation registers hcloud-go request metrics with reg.
func WithInstrumentation(reg prometheus.Registerer) ClientOption {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	hcOpts := []hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithRetryOpts(hcloud.RetryOpts{
			BackoffFunc: hcloud.ConstantBackoff(time.Second),
			MaxRetries:  0,
		}),
	}
	if o.endpoint != "" {
		hcOpts = append(hcOpts, hcloud.WithEndpoint(o.endpoint))
	}
	if o.appName != "" {
		hcOpts = append(hcOpts, hcloud.WithApplication(o.appName, o.appVersion))
	}
	if o.registerer != nil {
		hcOpts = append(hcOpts, hcloud.WithInstrumentation(o.registerer))
	}
	return &RealClient{client: hcloud.NewClient(hcOpts...)}
}
