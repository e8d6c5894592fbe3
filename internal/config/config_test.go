package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoadLocalConfig(t *testing.T) {
	t.Setenv("COMMISSION_CONFIG_PATH", "../../config/local.yaml")

	cfg := MustLoad()
	require.NotNil(t, cfg)
	assert.Equal(t, "admin-root", cfg.BootstrapAdminID)
	assert.Equal(t, "8080", cfg.HTTPServer.Port)
	assert.True(t, cfg.KafkaService.Enabled())
	assert.Equal(t, "localhost:9092", cfg.KafkaService.Addr())
	assert.Equal(t, 5*time.Second, cfg.AttachmentService.Timeout)
	assert.Equal(t, time.Minute, cfg.Graph.RefreshInterval)
	assert.Equal(t, "5 0 * * *", cfg.Salary.Schedule)
	require.Len(t, cfg.Eligibility.Policies, 1)
	assert.Equal(t, "payout:revshare", cfg.Eligibility.Policies[0].Category)
	assert.Equal(t, 1, cfg.Eligibility.Policies[0].DayOfMonth)
}
