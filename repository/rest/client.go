// Package rest implements the directory, mailbox and credential collaborators
// as JSON-over-HTTP clients on top of fasthttp.
package rest

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const defaultTimeout = 15 * time.Second

// Config carries the connection settings shared by the REST clients.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func newClient(name string) *fasthttp.Client {
	return &fasthttp.Client{
		Name:                name,
		MaxIdleConnDuration: time.Minute,
	}
}

// do executes one HTTP exchange and returns the status code and a copy of the
// response body. The request and response objects are pooled; callers never
// see them.
func do(client *fasthttp.Client, method, url, bearer string, body []byte, timeout time.Duration) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")
	if bearer != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, err
	}

	out := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), out, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
