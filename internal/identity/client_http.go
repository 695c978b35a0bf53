package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// HTTPClient talks to the identity provider's admin REST API. The provider
// owns credential storage; this client only creates and deletes principals.
//
// No retries and no client-side timeout here: a transient network failure
// surfaces to the caller exactly like a permanent one, and the saga layer
// decides what to compensate.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPClient(baseURL, serviceKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     http.DefaultClient,
	}
}

type createIdentityRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Metadata map[string]string `json:"user_metadata,omitempty"`
}

type createIdentityResponse struct {
	ID string `json:"id"`
}

func (c *HTTPClient) CreateIdentity(ctx context.Context, params CreateParams) (domain.AccountID, error) {
	body, err := json.Marshal(createIdentityRequest{
		Email:    params.Email,
		Password: params.Secret,
		Metadata: params.Metadata,
	})
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to encode identity request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/users", bytes.NewReader(body))
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to build identity request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeInsertFailed, "identity store unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.AccountID{}, dErrors.Newf(dErrors.CodeInsertFailed,
			"identity store rejected creation: status %d", resp.StatusCode)
	}

	var created createIdentityResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to decode identity response")
	}
	id, err := domain.ParseAccountID(created.ID)
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeInsertFailed, "identity store returned malformed id")
	}
	return id, nil
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate verifies credentials against the admin API. 401, 403, and
// 404 all collapse into the same invalid-credentials error so which one the
// provider picked for an unknown email never leaks to a caller.
func (c *HTTPClient) Authenticate(ctx context.Context, email, secret string) (domain.AccountID, error) {
	body, err := json.Marshal(authenticateRequest{Email: email, Password: secret})
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to encode authentication request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/users/authenticate", bytes.NewReader(body))
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to build authentication request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "identity store unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return domain.AccountID{}, dErrors.New(dErrors.CodeNotAuthenticated, "invalid credentials")
	default:
		return domain.AccountID{}, dErrors.Newf(dErrors.CodeFetchFailed,
			"identity store rejected authentication: status %d", resp.StatusCode)
	}

	var authenticated createIdentityResponse
	if err := json.NewDecoder(resp.Body).Decode(&authenticated); err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to decode authentication response")
	}
	id, err := domain.ParseAccountID(authenticated.ID)
	if err != nil {
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "identity store returned malformed id")
	}
	return id, nil
}

func (c *HTTPClient) DeleteIdentity(ctx context.Context, id domain.AccountID) error {
	endpoint := fmt.Sprintf("%s/admin/users/%s", c.baseURL, url.PathEscape(id.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to build identity delete request")
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeIdentityDeleteFailed, "identity store unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return dErrors.Newf(dErrors.CodeIdentityDeleteFailed,
			"identity store rejected deletion: status %d", resp.StatusCode)
	}
}
