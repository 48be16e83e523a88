package client

import (
	"context"
	"net/http"
	"net/url"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

// RoomClient is the reservations service's view of the room directory.
type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(baseURL string) *RoomClient {
	return &RoomClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RoomClient) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/rooms/id/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.Internal("Room directory unreachable", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Room", id)
	default:
		return nil, apperrors.Internal("Room directory error: "+GetErrorMessage(resp), nil)
	}

	var room model.Room
	if err := resp.DecodeData(&room); err != nil {
		return nil, apperrors.Internal("Failed to decode room", err)
	}
	return &room, nil
}

func (c *RoomClient) IsAvailable(ctx context.Context, id string) (bool, error) {
	room, err := c.GetRoom(ctx, id)
	if err != nil {
		return false, err
	}
	return room.Available, nil
}
