package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrove/seadb/internal/testutil"
	"github.com/seatrove/seadb/pkg/models"
)

func TestBeginEnableMonitoring(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(202, "", map[string]string{
			"Operation-Location": "https://api.seadb.test/ops/mon-1",
		}),
		testutil.JSONResponse(200, `{"status":"Succeeded","properties":{"properties":{"enabled":true,"retentionDays":14}}}`, nil),
	)
	c := newTestClient(sender)

	poller, err := c.Monitoring().BeginEnableMonitoring(context.Background(), "prod", "mydb",
		models.MonitoringSettingsProperties{RetentionDays: 14}, fastOptions())
	require.NoError(t, err)

	settings, err := poller.Result(context.Background())
	require.NoError(t, err)
	require.NotNil(t, settings.Properties)
	assert.True(t, settings.Properties.Enabled)
	assert.Equal(t, int32(14), settings.Properties.RetentionDays)

	reqs := sender.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t,
		"https://api.seadb.test/groups/prod/servers/mydb/monitoringSettings/default?api-version=2024-06-01",
		reqs[0].URL)

	// enabled is forced on regardless of the input
	var sent models.MonitoringSettings
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.True(t, sent.Properties.Enabled)
}

func TestGetSettings(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(200, `{"properties":{"enabled":true,"workspaceId":"ws-1"}}`, nil),
	)
	c := newTestClient(sender)

	settings, err := c.Monitoring().GetSettings(context.Background(), "prod", "mydb")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", settings.Properties.WorkspaceID)
}
