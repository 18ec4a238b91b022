package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultBaseURLConstant          = "https://api.github.com"
	repositoryPageSizeConstant      = 100
	acceptHeaderNameConstant        = "Accept"
	acceptHeaderValueConstant       = "application/vnd.github+json"
	apiVersionHeaderNameConstant    = "X-GitHub-Api-Version"
	apiVersionHeaderValueConstant   = "2022-11-28"
	authorizationHeaderNameConstant = "Authorization"
	bearerTemplateConstant          = "Bearer %s"
	requestCreationErrorTemplate    = "unable to create request: %w"
	requestExecutionErrorTemplate   = "request failed: %w"
	unexpectedStatusErrorTemplate   = "github api returned status %d: %s"
	responseDecodeErrorTemplate     = "unable to decode response: %w"
	base64EncodingNameConstant      = "base64"
)

// ErrContentDecode marks repository file content that could not be decoded.
var ErrContentDecode = errors.New("unable to decode repository file content")

// HTTPDoer executes HTTP requests; it exists so tests can stub transport behavior.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
}

// NewClient constructs a Client. An empty baseURL selects the public API host.
func NewClient(baseURL string, token string, httpClient HTTPDoer) *Client {
	if len(strings.TrimSpace(baseURL)) == 0 {
		baseURL = defaultBaseURLConstant
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

// ListRepositories returns one page of the organization repository listing.
// Pages are one-based; an empty slice signals the final page.
func (client *Client) ListRepositories(executionContext context.Context, organization string, pageNumber int) ([]Repository, error) {
	requestURL := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d&page=%d", client.baseURL, url.PathEscape(organization), repositoryPageSizeConstant, pageNumber)

	var repositories []Repository
	if requestError := client.getJSON(executionContext, requestURL, &repositories); requestError != nil {
		return nil, requestError
	}
	return repositories, nil
}

// ListBranches returns every branch of the repository, following pagination internally.
func (client *Client) ListBranches(executionContext context.Context, organization string, repository string) ([]Branch, error) {
	var branches []Branch
	for pageNumber := 1; ; pageNumber++ {
		requestURL := fmt.Sprintf("%s/repos/%s/%s/branches?per_page=%d&page=%d", client.baseURL, url.PathEscape(organization), url.PathEscape(repository), repositoryPageSizeConstant, pageNumber)

		var page []Branch
		if requestError := client.getJSON(executionContext, requestURL, &page); requestError != nil {
			return nil, requestError
		}
		if len(page) == 0 {
			return branches, nil
		}
		branches = append(branches, page...)
	}
}

// GetBranchProtection fetches the direct branch-protection record. A nil
// record with a nil error means the branch carries no protection, which the
// API reports as HTTP 404.
func (client *Client) GetBranchProtection(executionContext context.Context, organization string, repository string, branch string) (*BranchProtection, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/%s/branches/%s/protection", client.baseURL, url.PathEscape(organization), url.PathEscape(repository), url.PathEscape(branch))

	var protection BranchProtection
	requestError := client.getJSON(executionContext, requestURL, &protection)
	if requestError != nil {
		if isNotFound(requestError) {
			return nil, nil
		}
		return nil, requestError
	}
	return &protection, nil
}

// ListRulesets returns the summaries of every ruleset defined on the repository.
func (client *Client) ListRulesets(executionContext context.Context, organization string, repository string) ([]RulesetSummary, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/%s/rulesets", client.baseURL, url.PathEscape(organization), url.PathEscape(repository))

	var summaries []RulesetSummary
	if requestError := client.getJSON(executionContext, requestURL, &summaries); requestError != nil {
		if isNotFound(requestError) {
			return nil, nil
		}
		return nil, requestError
	}
	return summaries, nil
}

// GetRuleset fetches one ruleset detail record including conditions and rules.
func (client *Client) GetRuleset(executionContext context.Context, organization string, repository string, rulesetID int64) (*Ruleset, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/%s/rulesets/%d", client.baseURL, url.PathEscape(organization), url.PathEscape(repository), rulesetID)

	var ruleset Ruleset
	if requestError := client.getJSON(executionContext, requestURL, &ruleset); requestError != nil {
		return nil, requestError
	}
	return &ruleset, nil
}

// ListWebhooks returns the webhook registrations of the repository.
func (client *Client) ListWebhooks(executionContext context.Context, organization string, repository string) ([]Webhook, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/%s/hooks", client.baseURL, url.PathEscape(organization), url.PathEscape(repository))

	var webhooks []Webhook
	if requestError := client.getJSON(executionContext, requestURL, &webhooks); requestError != nil {
		return nil, requestError
	}
	return webhooks, nil
}

// GetFileContent fetches one repository file at the provided ref and decodes
// its base64 payload. Decode failures wrap ErrContentDecode so callers can
// distinguish them from transport failures.
func (client *Client) GetFileContent(executionContext context.Context, organization string, repository string, filePath string, reference string) ([]byte, error) {
	requestURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", client.baseURL, url.PathEscape(organization), url.PathEscape(repository), filePath, url.QueryEscape(reference))

	var contentResponse fileContentResponse
	if requestError := client.getJSON(executionContext, requestURL, &contentResponse); requestError != nil {
		return nil, requestError
	}

	if !strings.EqualFold(contentResponse.Encoding, base64EncodingNameConstant) {
		return nil, fmt.Errorf("%w: unexpected encoding %q", ErrContentDecode, contentResponse.Encoding)
	}

	decodedContent, decodeError := base64.StdEncoding.DecodeString(strings.ReplaceAll(contentResponse.Content, "\n", ""))
	if decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentDecode, decodeError)
	}
	return decodedContent, nil
}

type statusError struct {
	statusCode int
	body       string
}

func (requestError *statusError) Error() string {
	return fmt.Sprintf(unexpectedStatusErrorTemplate, requestError.statusCode, requestError.body)
}

func isNotFound(requestError error) bool {
	var apiError *statusError
	if errors.As(requestError, &apiError) {
		return apiError.statusCode == http.StatusNotFound
	}
	return false
}

func (client *Client) getJSON(executionContext context.Context, requestURL string, target any) error {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestError != nil {
		return fmt.Errorf(requestCreationErrorTemplate, requestError)
	}

	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	request.Header.Set(apiVersionHeaderNameConstant, apiVersionHeaderValueConstant)
	if len(client.token) > 0 {
		request.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(bearerTemplateConstant, client.token))
	}

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return fmt.Errorf(requestExecutionErrorTemplate, executionError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return &statusError{statusCode: response.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if decodeError := json.NewDecoder(response.Body).Decode(target); decodeError != nil {
		return fmt.Errorf(responseDecodeErrorTemplate, decodeError)
	}
	return nil
}
