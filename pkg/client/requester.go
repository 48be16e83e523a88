package client

import (
	"context"
	"net/http"
	"net/url"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

// RequesterClient is the reservations service's view of the requester directory.
type RequesterClient struct {
	httpClient *HttpClient
}

func NewRequesterClient(baseURL string) *RequesterClient {
	return &RequesterClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RequesterClient) GetRequester(ctx context.Context, id string) (*model.Requester, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/requesters/id/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.Internal("Requester directory unreachable", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Requester", id)
	default:
		return nil, apperrors.Internal("Requester directory error: "+GetErrorMessage(resp), nil)
	}

	var requester model.Requester
	if err := resp.DecodeData(&requester); err != nil {
		return nil, apperrors.Internal("Failed to decode requester", err)
	}
	return &requester, nil
}
