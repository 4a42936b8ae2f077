package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/seatrove/seadb/pkg/config"
	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/polling"
	"github.com/seatrove/seadb/pkg/transport"
)

const userAgent = "seadb-sdk-go"

// Client is the entry point to the SeaDB management API. It owns the
// endpoint and API version; requests go out over an injected Sender whose
// lifecycle belongs to the caller.
type Client struct {
	endpoint   string
	apiVersion string
	sender     transport.Sender
	pollOpts   polling.Options
}

// New builds a Client over an existing sender.
func New(endpoint, apiVersion string, sender transport.Sender) *Client {
	if apiVersion == "" {
		apiVersion = config.DefaultAPIVersion
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiVersion: apiVersion,
		sender:     sender,
	}
}

// NewFromConfig wires a Client from configuration. httpClient is borrowed;
// pass nil to use http.DefaultClient.
func NewFromConfig(cfg *config.Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sender := transport.NewClient(
		httpClient,
		transport.StaticTokenCredential(cfg.APIToken),
		userAgent,
	)
	c := New(cfg.Endpoint, cfg.APIVersion, sender)
	c.pollOpts = polling.Options{
		DisablePolling:  cfg.Polling.Disabled,
		Frequency:       cfg.Polling.Frequency,
		KeepRawResponse: cfg.Polling.KeepRawResponse,
		RetryBudget:     cfg.Retry,
	}
	return c, nil
}

// Instances returns the server-instance operations client.
func (c *Client) Instances() *InstancesClient {
	return &InstancesClient{client: c}
}

// Monitoring returns the monitoring operations client.
func (c *Client) Monitoring() *MonitoringClient {
	return &MonitoringClient{client: c}
}

func (c *Client) pollingOptions(opts *polling.Options) *polling.Options {
	if opts != nil {
		return opts
	}
	o := c.pollOpts
	return &o
}

func (c *Client) serverURL(group, name string) string {
	return fmt.Sprintf("%s/groups/%s/servers/%s?api-version=%s",
		c.endpoint, url.PathEscape(group), url.PathEscape(name), c.apiVersion)
}

func (c *Client) serverActionURL(group, name, action string) string {
	return fmt.Sprintf("%s/groups/%s/servers/%s/%s?api-version=%s",
		c.endpoint, url.PathEscape(group), url.PathEscape(name), action, c.apiVersion)
}

func (c *Client) serversURL(group string) string {
	return fmt.Sprintf("%s/groups/%s/servers?api-version=%s",
		c.endpoint, url.PathEscape(group), c.apiVersion)
}

func (c *Client) monitoringURL(group, server string) string {
	return fmt.Sprintf("%s/groups/%s/servers/%s/monitoringSettings/default?api-version=%s",
		c.endpoint, url.PathEscape(group), url.PathEscape(server), c.apiVersion)
}

// apiError turns a non-2xx initial response into an error carrying the
// provider's code and message when present.
func apiError(resp *transport.Response) error {
	if eb := models.ParseErrorBody(resp.Body); eb != nil {
		return fmt.Errorf("request failed (HTTP %d): %s: %s", resp.StatusCode, eb.Code, eb.Message)
	}
	return fmt.Errorf("request failed (HTTP %d)", resp.StatusCode)
}
