package vtmsapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// ListDesignations returns every designation. Results are cached per token
// until a designation mutation.
func (c *Client) ListDesignations(ctx context.Context, sess Session) ([]Designation, error) {
	token := sessionToken(sess)
	key, err := c.cache.BuildKey(ctx, TagDesignation, token, "list")
	if err != nil {
		c.logger.Warn("vtmsapi cache key", slog.Any("error", err))
		return c.fetchDesignations(ctx, sess)
	}
	var items []Designation
	err = c.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (any, error) {
		return c.fetchDesignations(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) fetchDesignations(ctx context.Context, sess Session) ([]Designation, error) {
	var resp envelope[itemList[Designation]]
	if err := c.do(ctx, sess, call{method: http.MethodGet, path: "/admin/designations"}, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Items == nil {
		return []Designation{}, nil
	}
	return resp.Data.Items, nil
}

// CreateDesignation creates a designation. The create payload never carries isActive.
func (c *Client) CreateDesignation(ctx context.Context, sess Session, in DesignationInput) error {
	in.IsActive = nil
	if in.PermissionKeys == nil {
		in.PermissionKeys = []string{}
	}
	if err := c.do(ctx, sess, call{method: http.MethodPost, path: "/admin/designations", body: in}, nil); err != nil {
		return err
	}
	c.invalidate(ctx, TagDesignation)
	return nil
}

// UpdateDesignation patches the designation id.
func (c *Client) UpdateDesignation(ctx context.Context, sess Session, id string, in DesignationInput) error {
	if in.PermissionKeys == nil {
		in.PermissionKeys = []string{}
	}
	if err := c.do(ctx, sess, call{method: http.MethodPatch, path: "/admin/designations/" + url.PathEscape(id), body: in}, nil); err != nil {
		return err
	}
	c.invalidate(ctx, TagDesignation)
	return nil
}

// DeleteDesignation removes the designation id.
func (c *Client) DeleteDesignation(ctx context.Context, sess Session, id string) error {
	if err := c.do(ctx, sess, call{method: http.MethodDelete, path: "/admin/designations/" + url.PathEscape(id)}, nil); err != nil {
		return err
	}
	c.invalidate(ctx, TagDesignation)
	return nil
}
