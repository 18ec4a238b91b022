package azdo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultBaseURLConstant          = "https://dev.azure.com"
	apiVersionQueryConstant         = "api-version=7.0"
	definitionURLTemplateConstant   = "%s/%s/%s/_apis/build/definitions/%d?%s"
	authorizationHeaderNameConstant = "Authorization"
	basicAuthTemplateConstant       = "Basic %s"
	acceptHeaderNameConstant        = "Accept"
	acceptHeaderValueConstant       = "application/json"
	requestCreationErrorTemplate    = "unable to create request: %w"
	requestExecutionErrorTemplate   = "request failed: %w"
	unexpectedStatusErrorTemplate   = "azure devops api returned status %d: %s"
	responseDecodeErrorTemplate     = "unable to decode response: %w"
)

// HTTPDoer executes HTTP requests; it exists so tests can stub transport behavior.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client reads build definitions from the Azure DevOps REST API. Personal
// access tokens are supplied per call because each reference environment may
// carry its own credential.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient constructs a Client. An empty baseURL selects the public service host.
func NewClient(baseURL string, httpClient HTTPDoer) *Client {
	if len(strings.TrimSpace(baseURL)) == 0 {
		baseURL = defaultBaseURLConstant
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// GetBuildDefinition fetches one build definition including its triggers and process tree.
func (client *Client) GetBuildDefinition(executionContext context.Context, accessToken string, organization string, project string, definitionID int) (*BuildDefinition, error) {
	requestURL := fmt.Sprintf(definitionURLTemplateConstant, client.baseURL, url.PathEscape(organization), url.PathEscape(project), definitionID, apiVersionQueryConstant)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestError != nil {
		return nil, fmt.Errorf(requestCreationErrorTemplate, requestError)
	}

	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	encodedToken := base64.StdEncoding.EncodeToString([]byte(":" + accessToken))
	request.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(basicAuthTemplateConstant, encodedToken))

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return nil, fmt.Errorf(requestExecutionErrorTemplate, executionError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf(unexpectedStatusErrorTemplate, response.StatusCode, strings.TrimSpace(string(body)))
	}

	var definition BuildDefinition
	if decodeError := json.NewDecoder(response.Body).Decode(&definition); decodeError != nil {
		return nil, fmt.Errorf(responseDecodeErrorTemplate, decodeError)
	}
	return &definition, nil
}
