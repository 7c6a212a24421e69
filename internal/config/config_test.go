package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeYaml(t, "server:\n  mode: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.True(t, c.Settlement.ProcessorFeePct.Equal(decimal.NewFromInt(2)))
	assert.True(t, c.Settlement.DefaultPlatformFeePct.Equal(decimal.NewFromInt(1)))
	assert.True(t, c.Settlement.DefaultConsignmentRate.Equal(decimal.NewFromInt(50)))
	assert.True(t, c.Settlement.OnlineShippingSurcharge.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 4, c.Settlement.TransferConcurrency)
	assert.Equal(t, "settlement_notify", c.RabbitMQ.NotifyQueue)
	assert.Equal(t, 3, c.Marketing.MaxDeliveryRetry)
}

func TestLoadReadsSettlementOverrides(t *testing.T) {
	c, err := Load(writeYaml(t, `
settlement:
  processorFeePct: "2.9"
  defaultConsignmentRate: "60"
  onlineShippingSurcharge: "4.95"
  transferConcurrency: 8
`))
	require.NoError(t, err)

	assert.Equal(t, "2.9", c.Settlement.ProcessorFeePct.String())
	assert.Equal(t, "60", c.Settlement.DefaultConsignmentRate.String())
	assert.Equal(t, "4.95", c.Settlement.OnlineShippingSurcharge.String())
	assert.Equal(t, 8, c.Settlement.TransferConcurrency)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STELLA_SECURITY_HMACSECRET", "from-env")
	c, err := Load(writeYaml(t, "security:\n  hmacSecret: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Security.HMACSecret)
}

func TestLoadRejectsBadPercent(t *testing.T) {
	_, err := Load(writeYaml(t, "settlement:\n  processorFeePct: \"-1\"\n"))
	require.Error(t, err)

	_, err = Load(writeYaml(t, "settlement:\n  defaultPlatformFeePct: abc\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
