package commands

import (
	"context"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/spf13/cobra"
)

// NewMailCommand creates the mail command group.
func NewMailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Mail groups",
		Long:  "Inspect mail groups",
	}

	members := &cobra.Command{
		Use:   "members",
		Short: "Manage mail group members",
	}
	members.AddCommand(newMailMembersListCommand())

	cmd.AddCommand(members)

	return cmd
}

func newMailMembersListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListMailGroupMembersRequest
	)

	cmd := &cobra.Command{
		Use:   "list GROUP_ID",
		Short: "List mail group members",
		Long:  "List the members of a mail group. GROUP_ID is the group ID or address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.MailGroupID = args[0]
			req.PageSize = opts.pageSize

			fetcher := &PageFetcher[lark.MailGroupMemberList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.MailGroupMemberList], error) {
					return client.Mail().ListMailGroupMembers(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.MailGroupMemberList], error) {
					return client.Mail().ListMailGroupMembersWithIterator(ctx, &req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.MailGroupMemberList) []lark.MailGroupMember { return p.Items },
				&OutputRenderer[lark.MailGroupMember]{
					Header: []string{"Member ID", "Type", "Email", "User ID", "Department ID"},
					Row: func(m lark.MailGroupMember) []string {
						return []string{m.MemberID, m.Type, valueOrNA(m.Email), valueOrNA(m.UserID), valueOrNA(m.DepartmentID)}
					},
				})
		},
	}

	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of user IDs")
	cmd.Flags().StringVar(&req.DepartmentIDType, "department-id-type", "", "ID type of department IDs")
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}
