package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/polling"
	"github.com/seatrove/seadb/pkg/transport"
)

// MonitoringClient manages the monitoring subresource of server instances.
type MonitoringClient struct {
	client *Client
}

// BeginEnableMonitoring turns metric collection on for a server instance.
func (mc *MonitoringClient) BeginEnableMonitoring(
	ctx context.Context,
	group, server string,
	props models.MonitoringSettingsProperties,
	opts *polling.Options,
) (*polling.Poller[models.MonitoringSettings], error) {
	props.Enabled = true
	body, err := json.Marshal(models.MonitoringSettings{Properties: &props})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monitoring settings: %w", err)
	}
	return beginResourceOperation[models.MonitoringSettings](
		ctx, mc.client, http.MethodPut, mc.client.monitoringURL(group, server), body, opts,
	)
}

// GetSettings fetches the current monitoring settings of a server.
func (mc *MonitoringClient) GetSettings(ctx context.Context, group, server string) (models.MonitoringSettings, error) {
	var out models.MonitoringSettings
	resp, err := mc.client.sender.Send(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    mc.client.monitoringURL(group, server),
	})
	if err != nil {
		return out, err
	}
	if !transport.IsSuccess(resp.StatusCode) {
		return out, apiError(resp)
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal monitoring settings: %w", err)
	}
	return out, nil
}
