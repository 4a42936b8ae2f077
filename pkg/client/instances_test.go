package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrove/seadb/internal/testutil"
	"github.com/seatrove/seadb/pkg/client"
	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/polling"
	"github.com/seatrove/seadb/pkg/transport"
)

func fastOptions() *polling.Options {
	return &polling.Options{
		Frequency: time.Millisecond,
		RetryBudget: transport.RetryBudget{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			MaxElapsedTime:  time.Second,
		},
	}
}

func newTestClient(sender transport.Sender) *client.Client {
	return client.New("https://api.seadb.test", "2024-06-01", sender)
}

func TestBeginCreateIssuesPutAndPollsToCompletion(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(202, "", map[string]string{
			"Operation-Location": "https://api.seadb.test/ops/create-1",
		}),
		testutil.JSONResponse(200, `{"status":"InProgress"}`, nil),
		testutil.JSONResponse(200, `{"status":"Succeeded"}`, nil),
		testutil.JSONResponse(200, `{"name":"mydb","location":"eastus","properties":{"provisioningState":"Succeeded","fullyQualifiedDomainName":"mydb.seadb.test"}}`, nil),
	)
	c := newTestClient(sender)

	params := models.ServerForCreate{
		Location: "eastus",
		Properties: &models.ServerPropertiesForCreate{
			AdministratorLogin: "admin",
			Version:            "11",
			StorageMB:          51200,
		},
	}
	poller, err := c.Instances().BeginCreate(context.Background(), "prod", "mydb", params, fastOptions())
	require.NoError(t, err)

	server, err := poller.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mydb", server.Name)
	assert.Equal(t, "mydb.seadb.test", server.Properties.FullyQualifiedDomainName)

	reqs := sender.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "https://api.seadb.test/groups/prod/servers/mydb?api-version=2024-06-01", reqs[0].URL)

	var sent models.ServerForCreate
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "eastus", sent.Location)
	assert.Equal(t, int64(51200), sent.Properties.StorageMB)

	// final resource re-fetch goes back to the server URL
	assert.Equal(t, reqs[0].URL, reqs[3].URL)
}

func TestBeginCreateRejectsErrorStatus(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(409, `{"error":{"code":"Conflict","message":"name taken"}}`, nil),
	)
	c := newTestClient(sender)

	_, err := c.Instances().BeginCreate(context.Background(), "prod", "mydb", models.ServerForCreate{Location: "eastus"}, fastOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Conflict")
	assert.Contains(t, err.Error(), "409")
}

func TestBeginUpdateUsesPatch(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(200, `{"name":"mydb","properties":{"provisioningState":"Succeeded","storageMB":102400}}`, nil),
	)
	c := newTestClient(sender)

	poller, err := c.Instances().BeginUpdate(context.Background(), "prod", "mydb",
		models.ServerUpdateParameters{
			Properties: &models.ServerPropertiesForUpdate{StorageMB: 102400},
		}, fastOptions())
	require.NoError(t, err)

	// synchronous completion: the PATCH answered with a terminal body
	assert.True(t, poller.Done())
	server, err := poller.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(102400), server.Properties.StorageMB)

	reqs := sender.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
}

func TestBeginDeletePollsUntilResourceIsGone(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(202, "", nil),
		testutil.JSONResponse(200, `{"name":"mydb","properties":{"provisioningState":"Deleting"}}`, nil),
		testutil.JSONResponse(404, `{"error":{"code":"ResourceNotFound","message":"gone"}}`, nil),
	)
	c := newTestClient(sender)

	poller, err := c.Instances().BeginDelete(context.Background(), "prod", "mydb", fastOptions())
	require.NoError(t, err)

	_, err = poller.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCodeSucceeded, poller.Status())
}

func TestBeginRestartPostsToActionURL(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(202, "", map[string]string{
			"Operation-Location": "https://api.seadb.test/ops/restart-1",
		}),
		testutil.JSONResponse(200, `{"status":"Succeeded"}`, nil),
	)
	c := newTestClient(sender)

	poller, err := c.Instances().BeginRestart(context.Background(), "prod", "mydb", fastOptions())
	require.NoError(t, err)

	_, err = poller.Result(context.Background())
	require.NoError(t, err)

	reqs := sender.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "https://api.seadb.test/groups/prod/servers/mydb/restart?api-version=2024-06-01", reqs[0].URL)
}

func TestBeginShutdownWithoutOperationURLSucceedsOnAccepted(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(202, "", nil),
	)
	c := newTestClient(sender)

	poller, err := c.Instances().BeginShutdown(context.Background(), "prod", "mydb", fastOptions())
	require.NoError(t, err)
	// no operation URL and no resource to probe: status code decides
	assert.Equal(t, models.StatusCodeSucceeded, poller.Status())
}

func TestGet(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(200, `{"name":"mydb","location":"westus"}`, nil),
	)
	c := newTestClient(sender)

	server, err := c.Instances().Get(context.Background(), "prod", "mydb")
	require.NoError(t, err)
	assert.Equal(t, "westus", server.Location)
}

func TestListFollowsPaging(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(200, `{"value":[{"name":"a"},{"name":"b"}],"nextLink":"https://api.seadb.test/groups/prod/servers?page=2"}`, nil),
		testutil.JSONResponse(200, `{"value":[{"name":"c"}]}`, nil),
	)
	c := newTestClient(sender)

	servers, err := c.Instances().List(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, servers, 3)
	assert.Equal(t, "c", servers[2].Name)

	reqs := sender.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "https://api.seadb.test/groups/prod/servers?page=2", reqs[1].URL)
}

func TestListSurfacesAPIErrors(t *testing.T) {
	sender := testutil.NewScriptedSender(
		testutil.JSONResponse(403, `{"error":{"code":"Forbidden","message":"no access"}}`, nil),
	)
	c := newTestClient(sender)

	_, err := c.Instances().List(context.Background(), "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Forbidden")
}
