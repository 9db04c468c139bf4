package hcloud

import (
	"errors"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/hcloud-runner/internal/util/ptr"
)

// BaseRequest holds the fields every server creation request carries.
type BaseRequest struct {
	Name       string
	Image      string
	ServerType string
	Location   string
	Labels     map[string]string
	EnableIPv4 bool
	EnableIPv6 bool
	UserData   string
}

// RenderError reports a server request that cannot be assembled.
type RenderError struct {
	Field string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid server request: %v", e.Err)
	}
	return fmt.Sprintf("invalid server request field %s: %v", e.Field, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// RequestBuilder assembles hcloud.ServerCreateOpts from a base request and
// optional resources. Optional appenders ignore nil identifiers.
type RequestBuilder struct {
	base       BaseRequest
	primaryIP4 *int64
	primaryIP6 *int64
	networks   []int64
	sshKeys    []int64
	volumes    []int64
}

// NewRequestBuilder starts a request from base.
func NewRequestBuilder(base BaseRequest) *RequestBuilder {
	return &RequestBuilder{base: base}
}

// WithPrimaryIPv4 assigns an existing primary IPv4 address.
func (b *RequestBuilder) WithPrimaryIPv4(id *int64) *RequestBuilder {
	if id != nil {
		b.primaryIP4 = id
	}
	return b
}

// WithPrimaryIPv6 assigns an existing primary IPv6 address.
func (b *RequestBuilder) WithPrimaryIPv6(id *int64) *RequestBuilder {
	if id != nil {
		b.primaryIP6 = id
	}
	return b
}

// WithNetwork attaches the server to a private network.
func (b *RequestBuilder) WithNetwork(id *int64) *RequestBuilder {
	if id != nil {
		b.networks = append(b.networks, *id)
	}
	return b
}

// WithSSHKey installs an SSH key for root.
func (b *RequestBuilder) WithSSHKey(id *int64) *RequestBuilder {
	if id != nil {
		b.sshKeys = append(b.sshKeys, *id)
	}
	return b
}

// WithVolume attaches a volume.
func (b *RequestBuilder) WithVolume(id *int64) *RequestBuilder {
	if id != nil {
		b.volumes = append(b.volumes, *id)
	}
	return b
}

// Build returns the creation options. The builder can be reused afterwards.
func (b *RequestBuilder) Build() (hcloud.ServerCreateOpts, error) {
	for _, f := range []struct{ name, value string }{
		{"name", b.base.Name},
		{"image", b.base.Image},
		{"server_type", b.base.ServerType},
		{"location", b.base.Location},
		{"user_data", b.base.UserData},
	} {
		if f.value == "" {
			return hcloud.ServerCreateOpts{}, &RenderError{Field: f.name, Err: errors.New("must not be empty")}
		}
	}
	if !b.base.EnableIPv4 && !b.base.EnableIPv6 && len(b.networks) == 0 {
		return hcloud.ServerCreateOpts{}, &RenderError{
			Field: "network",
			Err:   errors.New("a server without public IPv4 and IPv6 needs a network"),
		}
	}

	labels := make(map[string]string, len(b.base.Labels))
	for k, v := range b.base.Labels {
		labels[k] = v
	}

	opts := hcloud.ServerCreateOpts{
		Name:       b.base.Name,
		ServerType: &hcloud.ServerType{Name: b.base.ServerType},
		Image:      &hcloud.Image{Name: b.base.Image},
		Location:   &hcloud.Location{Name: b.base.Location},
		UserData:   b.base.UserData,
		Labels:     labels,

		StartAfterCreate: ptr.Bool(true),
		PublicNet: &hcloud.ServerCreatePublicNet{
			EnableIPv4: b.base.EnableIPv4,
			EnableIPv6: b.base.EnableIPv6,
		},
	}
	if b.primaryIP4 != nil {
		opts.PublicNet.IPv4 = &hcloud.PrimaryIP{ID: *b.primaryIP4}
	}
	if b.primaryIP6 != nil {
		opts.PublicNet.IPv6 = &hcloud.PrimaryIP{ID: *b.primaryIP6}
	}
	for _, id := range b.networks {
		opts.Networks = append(opts.Networks, &hcloud.Network{ID: id})
	}
	for _, id := range b.sshKeys {
		opts.SSHKeys = append(opts.SSHKeys, &hcloud.SSHKey{ID: id})
	}
	for _, id := range b.volumes {
		opts.Volumes = append(opts.Volumes, &hcloud.Volume{ID: id})
	}

	if err := opts.Validate(); err != nil {
		return hcloud.ServerCreateOpts{}, &RenderError{Err: err}
	}
	return opts, nil
}
