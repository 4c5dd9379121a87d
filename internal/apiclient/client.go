// Package apiclient is a typed HTTP client for the clientdesk REST
// surface, used by the workflow stores.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"clientdesk/internal/model"
)

// APIError is a remote rejection with the message extracted from the
// response body when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote rejected with %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote rejected with %d", e.StatusCode)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remote struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		return &APIError{StatusCode: resp.StatusCode, Message: remote.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/client-onboarding-projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/client-onboarding-projects", in, &out); err != nil {
		return nil, err
	}
	return out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPut, "/client-onboarding-projects/"+url.PathEscape(id), upd, &out); err != nil {
		return nil, err
	}
	return out.Project, nil
}

// UpdateStage forwards the full stage patch; the server responds with
// the entire updated project.
func (c *Client) UpdateStage(ctx context.Context, id string, patch model.StagePatch) (*model.Project, error) {
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPatch, "/client-onboarding-projects/"+url.PathEscape(id)+"/stage", patch, &out); err != nil {
		return nil, err
	}
	return out.Project, nil
}

func (c *Client) ListOffers(ctx context.Context) ([]model.Offer, error) {
	var out struct {
		Offers []model.Offer `json:"offers"`
	}
	if err := c.do(ctx, http.MethodGet, "/offers/all", nil, &out); err != nil {
		return nil, err
	}
	return out.Offers, nil
}

func (c *Client) CreateOffer(ctx context.Context, in model.OfferInput) (*model.Offer, error) {
	var out struct {
		Offer *model.Offer `json:"offer"`
	}
	if err := c.do(ctx, http.MethodPost, "/offers", in, &out); err != nil {
		return nil, err
	}
	return out.Offer, nil
}

type assignRequest struct {
	OfferID    string `json:"offerId"`
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	Notes      string `json:"notes"`
}

func (c *Client) AssignOffer(ctx context.Context, offerID, clientID, clientName, notes string) (*model.AssignedOffer, error) {
	var out struct {
		AssignedOffer *model.AssignedOffer `json:"assignedOffer"`
	}
	req := assignRequest{OfferID: offerID, ClientID: clientID, ClientName: clientName, Notes: notes}
	if err := c.do(ctx, http.MethodPost, "/offers/assign", req, &out); err != nil {
		return nil, err
	}
	return out.AssignedOffer, nil
}

func (c *Client) ListAssignedOffers(ctx context.Context, clientID string) ([]model.AssignedOffer, error) {
	path := "/offers/assigned"
	if clientID != "" {
		path += "?clientId=" + url.QueryEscape(clientID)
	}
	var out struct {
		AssignedOffers []model.AssignedOffer `json:"assignedOffers"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.AssignedOffers, nil
}

func (c *Client) ClaimOffer(ctx context.Context, assignmentID string) (*model.AssignedOffer, error) {
	var out struct {
		AssignedOffer *model.AssignedOffer `json:"assignedOffer"`
	}
	if err := c.do(ctx, http.MethodPut, "/offers/"+url.PathEscape(assignmentID)+"/claim", struct{}{}, &out); err != nil {
		return nil, err
	}
	return out.AssignedOffer, nil
}

type statusRequest struct {
	Status model.AssignmentStatus `json:"status"`
	Notes  string                 `json:"notes"`
}

func (c *Client) UpdateAssignedStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus, notes string) (*model.AssignedOffer, error) {
	var out struct {
		AssignedOffer *model.AssignedOffer `json:"assignedOffer"`
	}
	req := statusRequest{Status: status, Notes: notes}
	if err := c.do(ctx, http.MethodPut, "/offers/"+url.PathEscape(assignmentID)+"/status", req, &out); err != nil {
		return nil, err
	}
	return out.AssignedOffer, nil
}
