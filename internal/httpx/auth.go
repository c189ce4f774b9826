package httpx

import "context"

// Login starts a session by username. Production auth is an OAuth redirect
// flow the browser handles; this endpoint exists on the simulator so
// tooling and tests can obtain the same cookie pair.
func (c *Client) Login(ctx context.Context, username string) error {
	body := struct {
		Username string `json:"username"`
	}{username}
	if err := c.postJSON(ctx, "/auth/login", nil, body, nil); err != nil {
		return err
	}
	c.expired.Store(false)
	return nil
}
