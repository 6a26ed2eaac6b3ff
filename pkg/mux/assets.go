package mux

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
)

func (c *Client) GetAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	asset, err := fetch[models.Asset](ctx, c, "get_asset", http.MethodGet, "/video/v1/assets/"+url.PathEscape(assetID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	return &asset, nil
}
