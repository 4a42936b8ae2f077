package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/seatrove/seadb/pkg/logger"
	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/polling"
	"github.com/seatrove/seadb/pkg/transport"
)

// DeleteResponse is the (empty) final result of a delete operation.
type DeleteResponse struct{}

// ActionResponse is the (empty) final result of a lifecycle action.
type ActionResponse struct{}

// InstancesClient exposes the server-instance operations of the
// management API. Mutating calls return a poller tracking the service-side
// operation; Get and List are single-shot.
type InstancesClient struct {
	client *Client
}

// BeginCreate starts creating a server instance.
func (ic *InstancesClient) BeginCreate(
	ctx context.Context,
	group, name string,
	params models.ServerForCreate,
	opts *polling.Options,
) (*polling.Poller[models.ServerInstance], error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create parameters: %w", err)
	}
	return beginResourceOperation[models.ServerInstance](
		ctx, ic.client, http.MethodPut, ic.client.serverURL(group, name), body, opts,
	)
}

// BeginUpdate starts a partial update of a server instance. Nil fields in
// params are left untouched by the service.
func (ic *InstancesClient) BeginUpdate(
	ctx context.Context,
	group, name string,
	params models.ServerUpdateParameters,
	opts *polling.Options,
) (*polling.Poller[models.ServerInstance], error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update parameters: %w", err)
	}
	return beginResourceOperation[models.ServerInstance](
		ctx, ic.client, http.MethodPatch, ic.client.serverURL(group, name), body, opts,
	)
}

// BeginDelete starts deleting a server instance.
func (ic *InstancesClient) BeginDelete(
	ctx context.Context,
	group, name string,
	opts *polling.Options,
) (*polling.Poller[DeleteResponse], error) {
	return beginResourceOperation[DeleteResponse](
		ctx, ic.client, http.MethodDelete, ic.client.serverURL(group, name), nil, opts,
	)
}

// BeginStart starts a stopped server instance.
func (ic *InstancesClient) BeginStart(
	ctx context.Context,
	group, name string,
	opts *polling.Options,
) (*polling.Poller[ActionResponse], error) {
	return ic.beginAction(ctx, group, name, "start", opts)
}

// BeginShutdown shuts a running server instance down.
func (ic *InstancesClient) BeginShutdown(
	ctx context.Context,
	group, name string,
	opts *polling.Options,
) (*polling.Poller[ActionResponse], error) {
	return ic.beginAction(ctx, group, name, "shutdown", opts)
}

// BeginRestart restarts a server instance.
func (ic *InstancesClient) BeginRestart(
	ctx context.Context,
	group, name string,
	opts *polling.Options,
) (*polling.Poller[ActionResponse], error) {
	return ic.beginAction(ctx, group, name, "restart", opts)
}

func (ic *InstancesClient) beginAction(
	ctx context.Context,
	group, name, action string,
	opts *polling.Options,
) (*polling.Poller[ActionResponse], error) {
	url := ic.client.serverActionURL(group, name, action)
	resp, err := ic.client.sender.Send(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    url,
	})
	if err != nil {
		return nil, err
	}
	if !acceptedStatus(resp.StatusCode) {
		return nil, apiError(resp)
	}
	logger.Get().Debugf("%s accepted for server %s/%s (HTTP %d)", action, group, name, resp.StatusCode)
	// actions have no resource to re-fetch; without an operation URL the
	// initial status code decides
	return polling.NewPoller[ActionResponse](
		ic.client.sender, http.MethodPost, "", resp, ic.client.pollingOptions(opts),
	), nil
}

// Get fetches a server instance.
func (ic *InstancesClient) Get(ctx context.Context, group, name string) (models.ServerInstance, error) {
	var out models.ServerInstance
	resp, err := ic.client.sender.Send(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    ic.client.serverURL(group, name),
	})
	if err != nil {
		return out, err
	}
	if !transport.IsSuccess(resp.StatusCode) {
		return out, apiError(resp)
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal server instance: %w", err)
	}
	return out, nil
}

// List returns every server instance in the group, following paging links.
func (ic *InstancesClient) List(ctx context.Context, group string) ([]*models.ServerInstance, error) {
	var all []*models.ServerInstance
	url := ic.client.serversURL(group)
	for url != "" {
		resp, err := ic.client.sender.Send(ctx, &transport.Request{
			Method: http.MethodGet,
			URL:    url,
		})
		if err != nil {
			return nil, err
		}
		if !transport.IsSuccess(resp.StatusCode) {
			return nil, apiError(resp)
		}
		var page models.ServerInstanceList
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal server list: %w", err)
		}
		all = append(all, page.Value...)
		url = page.NextLink
	}
	return all, nil
}

// beginResourceOperation issues a mutating call against a resource URL and
// wraps the accepted response in a poller.
func beginResourceOperation[T any](
	ctx context.Context,
	c *Client,
	method, url string,
	body []byte,
	opts *polling.Options,
) (*polling.Poller[T], error) {
	resp, err := c.sender.Send(ctx, &transport.Request{
		Method: method,
		URL:    url,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if !acceptedStatus(resp.StatusCode) {
		return nil, apiError(resp)
	}
	logger.Get().Debugf("%s %s accepted (HTTP %d)", method, url, resp.StatusCode)
	return polling.NewPoller[T](c.sender, method, url, resp, c.pollingOptions(opts)), nil
}

func acceptedStatus(code int) bool {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}
