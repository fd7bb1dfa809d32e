package vtmsapi

import (
	"context"
	"log/slog"
	"net/http"
)

// PermissionKeys returns the assignable designation and page permission keys.
func (c *Client) PermissionKeys(ctx context.Context, sess Session) (PermissionCatalog, error) {
	token := sessionToken(sess)
	key, err := c.cache.BuildKey(ctx, TagPermission, token, "catalog")
	if err != nil {
		c.logger.Warn("vtmsapi cache key", slog.Any("error", err))
		return c.fetchPermissionKeys(ctx, sess)
	}
	var catalog PermissionCatalog
	err = c.cache.FetchJSON(ctx, key, &catalog, func(ctx context.Context) (any, error) {
		return c.fetchPermissionKeys(ctx, sess)
	})
	return catalog, err
}

func (c *Client) fetchPermissionKeys(ctx context.Context, sess Session) (PermissionCatalog, error) {
	var resp envelope[PermissionCatalog]
	if err := c.do(ctx, sess, call{method: http.MethodGet, path: "/admin/permissions"}, &resp); err != nil {
		return PermissionCatalog{}, err
	}
	catalog := resp.Data
	if catalog.DesignationPermissions == nil {
		catalog.DesignationPermissions = []string{}
	}
	if catalog.PagePermissions == nil {
		catalog.PagePermissions = []string{}
	}
	return catalog, nil
}
