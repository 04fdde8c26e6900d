package http_test

import (
	"testing"

	larkhttp "github.com/larksuite/oapi-client/internal/http"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{name: "no placeholders", path: "/open-apis/im/v1/chats", want: "/open-apis/im/v1/chats"},
		{
			name:   "single placeholder",
			path:   "/open-apis/im/v1/chats/:chat_id/members",
			params: map[string]string{"chat_id": "oc_123"},
			want:   "/open-apis/im/v1/chats/oc_123/members",
		},
		{
			name:   "escaped value",
			path:   "/open-apis/mail/v1/mailgroups/:mailgroup_id/members",
			params: map[string]string{"mailgroup_id": "team/a b"},
			want:   "/open-apis/mail/v1/mailgroups/team%2Fa%20b/members",
		},
		{
			name:   "extra params ignored",
			path:   "/open-apis/docx/v1/documents/:document_id/blocks",
			params: map[string]string{"document_id": "doc", "unused": "x"},
			want:   "/open-apis/docx/v1/documents/doc/blocks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := larkhttp.FillPath(tt.path, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFillPath_Missing(t *testing.T) {
	t.Parallel()

	_, err := larkhttp.FillPath("/open-apis/im/v1/chats/:chat_id/members", map[string]string{"chat_id": ""})
	require.ErrorIs(t, err, lark.ErrMissingPathParam)
	assert.Contains(t, err.Error(), "chat_id")
}
