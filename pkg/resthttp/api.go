package resthttp

import (
	"context"
	"net/http"
	"strings"

	"ctoken/core"
)

// API client of the ctoken rest api
type API struct {
	host string
}

// NewAPI api client for the server at host, e.g. http://localhost:9000/api
func NewAPI(host string) *API {
	return &API{host: strings.TrimSuffix(host, "/")}
}

func (a *API) get(ctx context.Context, path string, resp interface{}) error {
	_, err := Execute(Request(ctx), http.MethodGet, a.host+path, nil, resp)
	return err
}

// Get decoded json of path
func (a *API) Get(ctx context.Context, path string) (interface{}, error) {
	var resp interface{}
	if err := a.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Submit queues req, returns it with the assigned seq
func (a *API) Submit(ctx context.Context, req *core.Request) (*core.Request, error) {
	var resp core.Request
	if _, err := Execute(WithRequestID(ctx, req.ID), http.MethodPost, a.host+"/requests", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
