package api

import "context"

// List retrieves up to a thousand areas, enough to fill a selection list.
func (s AreasService) List(ctx context.Context) ([]Area, error) {
	resp, err := s.TryPaths(ctx, withSuffix(s.Paths.Areas, listQuery), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return NormalizeAreas(resp.Body), nil
}
