package client

import (
	"context"
	"net/http"
	"net/url"
	apperrors "roomly/pkg/errors"
)

// ReservationClient lets the directory services issue cascade purges when a
// room or requester is deleted. No reservation may outlive its references.
type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseURL string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseURL),
	}
}

type purgeResult struct {
	Deleted int64 `json:"deleted"`
}

func (c *ReservationClient) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	return c.purge(ctx, "/api/v1/reservations/room/"+url.PathEscape(roomID))
}

func (c *ReservationClient) DeleteByRequester(ctx context.Context, requesterID string) (int64, error) {
	return c.purge(ctx, "/api/v1/reservations/requester/"+url.PathEscape(requesterID))
}

func (c *ReservationClient) purge(ctx context.Context, path string) (int64, error) {
	resp, err := c.httpClient.DELETE(ctx, path)
	if err != nil {
		return 0, apperrors.Internal("Reservations service unreachable", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Internal("Reservation purge failed: "+GetErrorMessage(resp), nil)
	}

	var result purgeResult
	if err := resp.DecodeData(&result); err != nil {
		return 0, apperrors.Internal("Failed to decode purge result", err)
	}
	return result.Deleted, nil
}
