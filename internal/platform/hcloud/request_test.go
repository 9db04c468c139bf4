package hcloud

import (
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hcloud-runner/internal/util/ptr"
)

func testBase() BaseRequest {
	return BaseRequest{
		Name:       "gh-runner-1a2b3c4d",
		Image:      "ubuntu-24.04",
		ServerType: "cx22",
		Location:   "nbg1",
		Labels:     map[string]string{"hcloud-runner.io/owner-id": "1"},
		EnableIPv4: true,
		EnableIPv6: true,
		UserData:   "#cloud-config\n",
	}
}

func TestRequestBuilder_NullOptionalsAddNothing(t *testing.T) {
	t.Parallel()

	opts, err := NewRequestBuilder(testBase()).
		WithPrimaryIPv4(nil).
		WithPrimaryIPv6(nil).
		WithNetwork(nil).
		WithSSHKey(nil).
		WithVolume(nil).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "gh-runner-1a2b3c4d", opts.Name)
	assert.Equal(t, "cx22", opts.ServerType.Name)
	assert.Equal(t, "ubuntu-24.04", opts.Image.Name)
	assert.Equal(t, "nbg1", opts.Location.Name)
	assert.Equal(t, "#cloud-config\n", opts.UserData)
	assert.Equal(t, map[string]string{"hcloud-runner.io/owner-id": "1"}, opts.Labels)
	require.NotNil(t, opts.PublicNet)
	assert.True(t, opts.PublicNet.EnableIPv4)
	assert.True(t, opts.PublicNet.EnableIPv6)
	assert.Nil(t, opts.PublicNet.IPv4)
	assert.Nil(t, opts.PublicNet.IPv6)
	assert.Empty(t, opts.Networks)
	assert.Empty(t, opts.SSHKeys)
	assert.Empty(t, opts.Volumes)
	require.NotNil(t, opts.StartAfterCreate)
	assert.True(t, *opts.StartAfterCreate)
}

func TestRequestBuilder_Network(t *testing.T) {
	t.Parallel()

	opts, err := NewRequestBuilder(testBase()).WithNetwork(ptr.Int64(42)).Build()
	require.NoError(t, err)
	assert.Equal(t, []*hcloud.Network{{ID: 42}}, opts.Networks)
}

func TestRequestBuilder_AllOptionals(t *testing.T) {
	t.Parallel()

	opts, err := NewRequestBuilder(testBase()).
		WithPrimaryIPv4(ptr.Int64(7)).
		WithPrimaryIPv6(ptr.Int64(8)).
		WithNetwork(ptr.Int64(42)).
		WithSSHKey(ptr.Int64(5)).
		WithVolume(ptr.Int64(9)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, int64(7), opts.PublicNet.IPv4.ID)
	assert.Equal(t, int64(8), opts.PublicNet.IPv6.ID)
	assert.Equal(t, []*hcloud.Network{{ID: 42}}, opts.Networks)
	assert.Equal(t, []*hcloud.SSHKey{{ID: 5}}, opts.SSHKeys)
	assert.Equal(t, []*hcloud.Volume{{ID: 9}}, opts.Volumes)
}

func TestRequestBuilder_ScalarsOverwriteArraysAppend(t *testing.T) {
	t.Parallel()

	opts, err := NewRequestBuilder(testBase()).
		WithPrimaryIPv4(ptr.Int64(1)).
		WithPrimaryIPv4(ptr.Int64(2)).
		WithPrimaryIPv4(nil).
		WithSSHKey(ptr.Int64(10)).
		WithSSHKey(ptr.Int64(11)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, int64(2), opts.PublicNet.IPv4.ID)
	assert.Equal(t, []*hcloud.SSHKey{{ID: 10}, {ID: 11}}, opts.SSHKeys)
}

func TestRequestBuilder_LabelsAreCopied(t *testing.T) {
	t.Parallel()

	base := testBase()
	opts, err := NewRequestBuilder(base).Build()
	require.NoError(t, err)

	opts.Labels["extra"] = "x"
	assert.NotContains(t, base.Labels, "extra")
}

func TestRequestBuilder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*BaseRequest)
		field  string
	}{
		{name: "missing name", mutate: func(b *BaseRequest) { b.Name = "" }, field: "name"},
		{name: "missing image", mutate: func(b *BaseRequest) { b.Image = "" }, field: "image"},
		{name: "missing server type", mutate: func(b *BaseRequest) { b.ServerType = "" }, field: "server_type"},
		{name: "missing location", mutate: func(b *BaseRequest) { b.Location = "" }, field: "location"},
		{name: "missing user data", mutate: func(b *BaseRequest) { b.UserData = "" }, field: "user_data"},
		{
			name: "no public ip and no network",
			mutate: func(b *BaseRequest) {
				b.EnableIPv4 = false
				b.EnableIPv6 = false
			},
			field: "network",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base := testBase()
			tt.mutate(&base)

			_, err := NewRequestBuilder(base).Build()
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.field, renderErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRequestBuilder_PrivateOnlyWithNetwork(t *testing.T) {
	t.Parallel()

	base := testBase()
	base.EnableIPv4 = false
	base.EnableIPv6 = false
	opts, err := NewRequestBuilder(base).WithNetwork(ptr.Int64(42)).Build()
	require.NoError(t, err)
	assert.False(t, opts.PublicNet.EnableIPv4)
	assert.False(t, opts.PublicNet.EnableIPv6)
}
