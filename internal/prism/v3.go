package prism

import (
	"context"
	"fmt"
)

// v3ListRequest is the body of a legacy v3 list call. Length 1 keeps the
// response small when only the match count is of interest.
type v3ListRequest struct {
	Kind   string `json:"kind"`
	Length int    `json:"length"`
	Offset int    `json:"offset"`
	Filter string `json:"filter,omitempty"`
}

type v3ListResponse struct {
	Metadata v3Metadata `json:"metadata"`
}

type v3Metadata struct {
	TotalMatches int `json:"total_matches"`
}

// CountV3 returns the number of v3 entities of the given kind matching
// the optional FIQL filter. The NCM Self-Service inventory (apps,
// blueprints, runbooks) is only reachable through this legacy surface.
func (c *Client) CountV3(ctx context.Context, kind, filter string) (int, error) {
	path := fmt.Sprintf("/api/nutanix/v3/%ss/list", kind)

	req := v3ListRequest{
		Kind:   kind,
		Length: 1,
		Offset: 0,
		Filter: filter,
	}

	var resp v3ListResponse
	if err := c.Post(ctx, path, req, &resp); err != nil {
		return 0, err
	}
	return resp.Metadata.TotalMatches, nil
}
