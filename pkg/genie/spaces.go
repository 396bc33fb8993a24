package genie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const spacesPath = "/api/2.0/genie/spaces"

// Space is a Genie space as returned by the Genie API.
type Space struct {
	SpaceID     string `json:"space_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`

	// SerializedSpace is the JSON-encoded configuration document. It is only
	// populated when the space is exported.
	SerializedSpace string `json:"serialized_space,omitempty"`
}

// CreateSpaceRequest is the body of a create call.
type CreateSpaceRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	WarehouseID     string `json:"warehouse_id"`
	ParentPath      string `json:"parent_path,omitempty"`
	SerializedSpace string `json:"serialized_space"`
}

// Validate checks the fields the API requires.
func (r *CreateSpaceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.WarehouseID, validation.Required),
		validation.Field(&r.SerializedSpace, validation.Required),
	)
}

// UpdateSpaceRequest is a partial update. Empty fields are left untouched
// by the server; SerializedSpace, when set, replaces the whole document.
type UpdateSpaceRequest struct {
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	WarehouseID     string `json:"warehouse_id,omitempty"`
	SerializedSpace string `json:"serialized_space,omitempty"`
}

// ListSpacesResponse is one page of spaces.
type ListSpacesResponse struct {
	Spaces        []Space `json:"spaces"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

func spacePath(spaceID string) string {
	return fmt.Sprintf("%s/%s", spacesPath, url.PathEscape(spaceID))
}

// CreateSpace creates a new space. An empty WarehouseID falls back to the
// client's configured warehouse.
func (c *Client) CreateSpace(ctx context.Context, req *CreateSpaceRequest) (*Space, error) {
	if req.WarehouseID == "" {
		req.WarehouseID = c.config.WarehouseID
	}
	if err := req.Validate(); err != nil {
		return nil, &Error{Op: "create space", Err: ErrConstraint, Msg: err.Error()}
	}

	var space Space
	if err := c.doRequest(ctx, http.MethodPost, spacesPath, nil, req, &space); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	c.logger.Info("created space", "space_id", space.SpaceID, "title", req.Title)
	return &space, nil
}

// ListSpacesPage returns a single page of spaces.
func (c *Client) ListSpacesPage(ctx context.Context, pageToken string) (*ListSpacesResponse, error) {
	var query url.Values
	if pageToken != "" {
		query = url.Values{"page_token": {pageToken}}
	}

	var resp ListSpacesResponse
	if err := c.doRequest(ctx, http.MethodGet, spacesPath, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	return &resp, nil
}

// ListSpaces returns every space the caller has access to, following
// pagination.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	var (
		spaces []Space
		token  string
	)
	for {
		page, err := c.ListSpacesPage(ctx, token)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, page.Spaces...)
		if page.NextPageToken == "" {
			return spaces, nil
		}
		token = page.NextPageToken
	}
}

// GetSpace returns space metadata without the serialized document.
func (c *Client) GetSpace(ctx context.Context, spaceID string) (*Space, error) {
	var space Space
	if err := c.doRequest(ctx, http.MethodGet, spacePath(spaceID), nil, nil, &space); err != nil {
		return nil, fmt.Errorf("failed to get space %s: %w", spaceID, err)
	}
	return &space, nil
}

// ExportSpace returns the space with its fully materialized serialized
// document. The caller needs CAN_EDIT on the space.
func (c *Client) ExportSpace(ctx context.Context, spaceID string) (*Space, error) {
	query := url.Values{"include_serialized_space": {"true"}}

	var space Space
	if err := c.doRequest(ctx, http.MethodGet, spacePath(spaceID), query, nil, &space); err != nil {
		return nil, fmt.Errorf("failed to export space %s: %w", spaceID, err)
	}
	if space.SerializedSpace == "" {
		return nil, &Error{
			Op:  "export space",
			Err: ErrNotFound,
			Msg: fmt.Sprintf("space %s returned no serialized_space", spaceID),
		}
	}
	return &space, nil
}

// UpdateSpace applies a partial update.
func (c *Client) UpdateSpace(ctx context.Context, spaceID string, req *UpdateSpaceRequest) (*Space, error) {
	var space Space
	if err := c.doRequest(ctx, http.MethodPatch, spacePath(spaceID), nil, req, &space); err != nil {
		return nil, fmt.Errorf("failed to update space %s: %w", spaceID, err)
	}

	c.logger.Info("updated space", "space_id", spaceID)
	return &space, nil
}

// DeleteSpace deletes a space.
func (c *Client) DeleteSpace(ctx context.Context, spaceID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, spacePath(spaceID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete space %s: %w", spaceID, err)
	}

	c.logger.Info("deleted space", "space_id", spaceID)
	return nil
}
