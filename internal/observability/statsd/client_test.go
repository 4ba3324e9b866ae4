package statsd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	// Emission on a disabled client must be a no-op, not a panic.
	client.Count("enrollment.stage", 1, nil)
	client.Timing("enrollment.duration", time.Second, nil)
	require.NoError(t, client.Close())
}

func TestNewClientEnabledWithoutAddress(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "  "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client
	client.Count("x", 1, nil)
	client.Gauge("x", 1, nil)
	client.Timing("x", time.Second, nil)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestMetricName(t *testing.T) {
	c := &Client{prefix: "edge"}
	assert.Equal(t, "edge.enrollment.stage", c.metricName("enrollment.stage"))
	assert.Equal(t, "edge.roster_sync", c.metricName(" roster sync "))
	assert.Equal(t, "edge", c.metricName(""))

	bare := &Client{}
	assert.Equal(t, "janitor.sweep", bare.metricName("janitor.sweep"))
}

func TestFormatTags(t *testing.T) {
	assert.Equal(t, "", formatTags(nil, nil))

	got := formatTags(map[string]string{"env": "dev"}, map[string]string{"result": "success", "stage": "run"})
	assert.Equal(t, "|#env:dev,result:success,stage:run", got)

	// Local tags override global ones of the same key.
	got = formatTags(map[string]string{"env": "dev"}, map[string]string{"env": "prod"})
	assert.Equal(t, "|#env:prod", got)
}
