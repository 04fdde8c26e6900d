package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailClient_ListMailGroupMembers(t *testing.T) {
	t.Parallel()

	ps, server := newPagedServer(t, http.MethodGet, "/open-apis/mail/v1/mailgroups/team@example.com/members",
		map[string]interface{}{
			"has_more":   true,
			"page_token": "m-1",
			"items":      []map[string]interface{}{{"member_id": "1", "email": "a@example.com", "type": "USER"}},
		},
		map[string]interface{}{
			"has_more": false,
			"items":    []map[string]interface{}{{"member_id": "2", "email": "b@example.com", "type": "USER"}},
		},
	)

	c := NewTestClient(t, server.URL, nil)

	it, err := c.Mail().ListMailGroupMembersWithIterator(context.Background(), &lark.ListMailGroupMembersRequest{
		MailGroupID: "team@example.com",
		UserIDType:  lark.UserIDTypeUserID,
	})
	require.NoError(t, err)

	var emails []string

	for page, err := range it.Seq2(context.Background()) {
		require.NoError(t, err)

		for _, member := range page.Items {
			emails = append(emails, member.Email)
		}
	}

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, emails)
	assert.Equal(t, "m-1", ps.request(1).URL.Query().Get("page_token"))
	assert.Equal(t, "user_id", ps.request(1).URL.Query().Get("user_id_type"))
}

func TestDocxClient_ListBlocks(t *testing.T) {
	t.Parallel()

	ps, server := newPagedServer(t, http.MethodGet, "/open-apis/docx/v1/documents/doxcn1/blocks",
		map[string]interface{}{
			"has_more": false,
			"items": []map[string]interface{}{
				{"block_id": "doxcn1", "block_type": 1, "page": map[string]interface{}{"elements": []interface{}{}}},
			},
		},
	)

	c := NewTestClient(t, server.URL, nil)

	page, err := c.Docx().ListBlocks(context.Background(), &lark.ListDocxBlocksRequest{DocumentID: "doxcn1", PageSize: 500})
	require.NoError(t, err)
	require.Len(t, page.Rest.Items, 1)
	assert.Equal(t, 1, page.Rest.Items[0].BlockType)
	assert.JSONEq(t, `{"elements":[]}`, string(page.Rest.Items[0].Page))
	assert.Equal(t, "-1", ps.request(0).URL.Query().Get("document_revision_id"))
	assert.Equal(t, "500", ps.request(0).URL.Query().Get("page_size"))
}

func TestLingoClient_ListEntities(t *testing.T) {
	t.Parallel()

	ps, server := newPagedServer(t, http.MethodGet, "/open-apis/lingo/v1/entities",
		map[string]interface{}{
			"has_more":   true,
			"page_token": "l-1",
			"entities":   []map[string]interface{}{{"id": "e1", "main_keys": []map[string]interface{}{{"key": "SLA"}}}},
		},
		map[string]interface{}{
			"has_more": false,
			"entities": []map[string]interface{}{{"id": "e2", "main_keys": []map[string]interface{}{{"key": "KPI"}}}},
		},
	)

	c := NewTestClient(t, server.URL, nil)

	it, err := c.Lingo().ListEntitiesWithIterator(context.Background(), &lark.ListLingoEntitiesRequest{RepoID: "r1"})
	require.NoError(t, err)

	var keys []string

	for res := it.Step(context.Background()); res.Kind == lark.ResultItem; res = it.Step(context.Background()) {
		for _, entity := range res.Value.Entities {
			keys = append(keys, entity.MainKeys[0].Key)
		}
	}

	assert.Equal(t, []string{"SLA", "KPI"}, keys)
	assert.Equal(t, 2, it.Pages())
	assert.Equal(t, "r1", ps.request(1).URL.Query().Get("repo_id"))
}

func TestLingoClient_FaultContainment(t *testing.T) {
	t.Parallel()

	server := errorServer(t, http.StatusOK, lark.ErrorCodePermissionDenied, "no permission")
	logger := &recordingLogger{}
	c := NewTestClient(t, server.URL, logger)

	it, err := c.Lingo().ListEntitiesWithIterator(context.Background(), nil)
	require.NoError(t, err)

	var values []*lark.LingoEntityList
	for v := range it.All(context.Background()) {
		values = append(values, v)
	}

	require.Len(t, values, 1)
	assert.Nil(t, values[0])
	assert.True(t, lark.IsPermissionDenied(it.Err()))
	assert.Equal(t, 1, logger.errorCount())

	v, ok := it.Next(context.Background())
	assert.Nil(t, v)
	assert.False(t, ok)
}

func TestEventClient_ListOutboundIPs_Error(t *testing.T) {
	t.Parallel()

	server := errorServer(t, http.StatusOK, lark.ErrorCodeRateLimited, "too many requests")
	logger := &recordingLogger{}
	c := NewTestClient(t, server.URL, logger)

	_, err := c.Event().ListOutboundIPs(context.Background(), &lark.ListOutboundIPsRequest{PageSize: 10})
	require.Error(t, err)
	assert.True(t, lark.IsRateLimited(err))

	apiErr := &lark.APIError{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lark.ErrorCodeRateLimited, apiErr.Code)
	assert.Equal(t, []string{"List request failed"}, logger.errors)
}

func TestMDMClient_ListUserAuthDataRelations(t *testing.T) {
	t.Parallel()

	ps, server := newPagedServer(t, http.MethodPost, "/open-apis/mdm/v1/user_auth_data_relations/list",
		map[string]interface{}{
			"has_more":   true,
			"page_token": "d-1",
			"items":      []map[string]interface{}{{"root_dimension_type": "biz_department", "uams_app_id": "cli_1"}},
		},
		map[string]interface{}{
			"has_more": false,
			"items":    []map[string]interface{}{{"root_dimension_type": "biz_department", "uams_app_id": "cli_2"}},
		},
	)

	c := NewTestClient(t, server.URL, nil)

	it, err := c.MDM().ListUserAuthDataRelationsWithIterator(context.Background(), &lark.ListUserAuthDataRelationsRequest{
		Filter: lark.UserAuthDataRelation{RootDimensionType: "biz_department", UamsAppID: "cli_1"},
	})
	require.NoError(t, err)

	pages, err := lark.CollectPages(context.Background(), it, nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	for i := range 2 {
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(ps.body(i), &body))
		assert.Equal(t, "biz_department", body["root_dimension_type"])
	}

	assert.Equal(t, "d-1", ps.request(1).URL.Query().Get("page_token"))
}

func TestMDMClient_BindUnbind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		call func(lark.MDMClient, *lark.BindUserAuthDataRequest) error
	}{
		{
			name: "bind",
			path: "/open-apis/mdm/v1/user_auth_data_relations/bind",
			call: func(c lark.MDMClient, r *lark.BindUserAuthDataRequest) error { return c.Bind(context.Background(), r) },
		},
		{
			name: "unbind",
			path: "/open-apis/mdm/v1/user_auth_data_relations/unbind",
			call: func(c lark.MDMClient, r *lark.BindUserAuthDataRequest) error { return c.Unbind(context.Background(), r) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ps, server := newPagedServer(t, http.MethodPost, tt.path, map[string]interface{}{})
			c := NewTestClient(t, server.URL, nil)

			err := tt.call(c.MDM(), &lark.BindUserAuthDataRequest{
				UserIDType: lark.UserIDTypeOpenID,
				Relation:   lark.UserAuthDataRelation{UamsAppID: "cli_1", AuthorizedUserIDs: []string{"ou_1"}},
			})
			require.NoError(t, err)
			assert.Equal(t, "open_id", ps.request(0).URL.Query().Get("user_id_type"))
			assert.Contains(t, string(ps.body(0)), `"user_auth_data_relation"`)

			require.ErrorIs(t, tt.call(c.MDM(), nil), lark.ErrRequestRequired)
		})
	}
}
