package azdo_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoseceng/releasegate/internal/azdo"
)

func TestClientGetBuildDefinition(testInstance *testing.T) {
	expectedAuthorization := "Basic " + base64.StdEncoding.EncodeToString([]byte(":personal-access-token"))
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "/ado-org/platform/_apis/build/definitions/41", request.URL.Path)
		require.Equal(testInstance, expectedAuthorization, request.Header.Get("Authorization"))
		fmt.Fprint(responseWriter, `{
			"id": 41,
			"name": "build-payments",
			"process": {"type": 1, "phases": [{"name": "Phase 1", "steps": [
				{"enabled": true, "displayName": "Checkmarx Scan", "task": {"id": "guid-checkmarx", "definitionType": "task"}}
			]}]},
			"repository": {"id": "payments-org/payments-api", "type": "GitHub", "defaultBranch": "refs/heads/main"},
			"triggers": [{"triggerType": "continuousIntegration"}, {"triggerType": "pullRequest"}]
		}`)
	}))
	defer server.Close()

	client := azdo.NewClient(server.URL, server.Client())

	definition, definitionError := client.GetBuildDefinition(context.Background(), "personal-access-token", "ado-org", "platform", 41)
	require.NoError(testInstance, definitionError)
	require.Equal(testInstance, 41, definition.ID)
	require.True(testInstance, definition.HasPullRequestTrigger())
	require.Equal(testInstance, azdo.ProcessTypeClassic, definition.Process.Type)
	require.Len(testInstance, definition.Process.Phases, 1)
	require.Equal(testInstance, "Checkmarx Scan", definition.Process.Phases[0].Steps[0].DisplayName)
}

func TestClientGetBuildDefinitionUnexpectedStatus(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := azdo.NewClient(server.URL, server.Client())

	_, definitionError := client.GetBuildDefinition(context.Background(), "expired-token", "ado-org", "platform", 41)
	require.Error(testInstance, definitionError)
	require.Contains(testInstance, definitionError.Error(), "401")
}

func TestBuildDefinitionHasPullRequestTrigger(testInstance *testing.T) {
	withoutTrigger := &azdo.BuildDefinition{Triggers: []azdo.Trigger{{TriggerType: "continuousIntegration"}}}
	require.False(testInstance, withoutTrigger.HasPullRequestTrigger())

	var nilDefinition *azdo.BuildDefinition
	require.False(testInstance, nilDefinition.HasPullRequestTrigger())
}
