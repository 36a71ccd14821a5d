// Package httpclient is the starting point for concrete REST API clients.
//
// Embed *Base to get credentials, a logger and an httpservice.Service, then
// add endpoint methods. Override Login and Logout when the API has a
// session, and implement Enterer to log in when a scope opens.
//
// Example Usage:
//
//	type PostsClient struct {
//		*httpclient.Base
//	}
//
//	err := httpclient.Use(ctx, client, func(c *PostsClient) error {
//		_, err := c.Service().Get(ctx, "posts")
//		return err
//	})
package httpclient
