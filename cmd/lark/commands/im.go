package commands

import (
	"context"
	"fmt"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/spf13/cobra"
)

// NewIMCommand creates the im command group.
func NewIMCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "im",
		Short: "Messaging",
		Long:  "List messages, chats and chat members",
	}

	cmd.AddCommand(newIMMessagesCommand())
	cmd.AddCommand(newIMChatsCommand())
	cmd.AddCommand(newIMMembersCommand())

	return cmd
}

func newIMMessagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Manage messages",
	}

	cmd.AddCommand(newIMMessagesListCommand())

	return cmd
}

func newIMMessagesListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListMessagesRequest
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages of a chat or thread",
		Long:  "List the messages of a chat or thread in server order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ContainerID == "" {
				return constants.ErrContainerIDRequired
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.PageSize = opts.pageSize

			fetcher := &PageFetcher[lark.MessageList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.MessageList], error) {
					return client.IM().ListMessages(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.MessageList], error) {
					return client.IM().ListMessagesWithIterator(ctx, &req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.MessageList) []lark.Message { return p.Items },
				&OutputRenderer[lark.Message]{
					Header: []string{"Message ID", "Type", "Sender", "Created", "Deleted"},
					Row: func(m lark.Message) []string {
						sender := constants.NotAvailable
						if m.Sender != nil {
							sender = m.Sender.ID
						}

						return []string{m.MessageID, m.MsgType, sender, m.CreateTime, formatBool(m.Deleted)}
					},
				})
		},
	}

	cmd.Flags().StringVar(&req.ContainerID, "container-id", "", "chat or thread ID (required)")
	cmd.Flags().StringVar(&req.ContainerIDType, "container-id-type", "chat", "container type (chat, thread)")
	cmd.Flags().StringVar(&req.StartTime, "start-time", "", "earliest create time, unix seconds")
	cmd.Flags().StringVar(&req.EndTime, "end-time", "", "latest create time, unix seconds")
	cmd.Flags().StringVar(&req.SortType, "sort", "", "ByCreateTimeAsc or ByCreateTimeDesc")
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}

func newIMChatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"chat"},
		Short:   "Manage chats",
	}

	cmd.AddCommand(newIMChatsListCommand())

	return cmd
}

func newIMChatsListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListChatsRequest
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats",
		Long:  "List the chats the caller belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.PageSize = opts.pageSize

			fetcher := &PageFetcher[lark.ChatList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.ChatList], error) {
					return client.IM().ListChats(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.ChatList], error) {
					return client.IM().ListChatsWithIterator(ctx, &req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.ChatList) []lark.Chat { return p.Items },
				&OutputRenderer[lark.Chat]{
					Header: []string{"Chat ID", "Name", "Owner", "External", "Status"},
					Row: func(c lark.Chat) []string {
						return []string{c.ChatID, c.Name, valueOrNA(c.OwnerID), formatBool(c.External), c.ChatStatus}
					},
				})
		},
	}

	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", lark.UserIDTypeOpenID, "ID type of owner IDs")
	cmd.Flags().StringVar(&req.SortType, "sort", "", "ByCreateTimeAsc or ByActiveTimeDesc")
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}

func newIMMembersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage chat members",
	}

	cmd.AddCommand(newIMMembersListCommand())

	return cmd
}

func newIMMembersListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListChatMembersRequest
	)

	cmd := &cobra.Command{
		Use:   "list CHAT_ID",
		Short: "List chat members",
		Long:  "List the members of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.ChatID = args[0]
			req.PageSize = opts.pageSize

			var total int

			fetcher := &PageFetcher[lark.ChatMemberList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.ChatMemberList], error) {
					return client.IM().ListChatMembers(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.ChatMemberList], error) {
					return client.IM().ListChatMembersWithIterator(ctx, &req)
				},
			}

			err = runList(cmd, &opts, fetcher,
				func(p *lark.ChatMemberList) []lark.ChatMember {
					total = p.MemberTotal

					return p.Items
				},
				&OutputRenderer[lark.ChatMember]{
					Header: []string{"Member ID", "Name", "Tenant"},
					Row: func(m lark.ChatMember) []string {
						return []string{m.MemberID, m.Name, m.TenantKey}
					},
				})
			if err != nil {
				return err
			}

			if format, _ := outputFormat(); format == constants.FormatTable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total members: %d\n", total)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&req.MemberIDType, "member-id-type", lark.UserIDTypeOpenID, "ID type of member IDs")
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}
