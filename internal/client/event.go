package client

import (
	"context"
	"net/http"

	"github.com/larksuite/oapi-client/pkg/lark"
)

const pathOutboundIPs = "/open-apis/event/v1/outbound_ip"

// EventClient implements lark.EventClient.
type EventClient struct {
	base
}

func outboundIPsRequest(req *lark.ListOutboundIPsRequest) (*lark.Request, error) {
	if req == nil {
		req = &lark.ListOutboundIPsRequest{}
	}

	values, err := query{}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{Method: http.MethodGet, Path: pathOutboundIPs, Query: values}, nil
}

// ListOutboundIPs implements lark.EventClient.ListOutboundIPs.
func (c *EventClient) ListOutboundIPs(ctx context.Context, req *lark.ListOutboundIPsRequest) (*lark.ListPage[lark.OutboundIPList], error) {
	r, err := outboundIPsRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.OutboundIPList](ctx, c.base, r)
}

// ListOutboundIPsWithIterator implements lark.EventClient.ListOutboundIPsWithIterator.
func (c *EventClient) ListOutboundIPsWithIterator(ctx context.Context, req *lark.ListOutboundIPsRequest) (*lark.Iterator[lark.OutboundIPList], error) {
	r, err := outboundIPsRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.OutboundIPList](c.base, r), nil
}
