package commands

import (
	"context"
	"strconv"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/spf13/cobra"
)

// NewDocxCommand creates the docx command group.
func NewDocxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docx",
		Aliases: []string{"doc"},
		Short:   "Documents",
		Long:    "Inspect the block tree of documents",
	}

	blocks := &cobra.Command{
		Use:   "blocks",
		Short: "Manage document blocks",
	}
	blocks.AddCommand(newDocxBlocksListCommand())

	cmd.AddCommand(blocks)

	return cmd
}

func newDocxBlocksListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListDocxBlocksRequest
	)

	cmd := &cobra.Command{
		Use:   "list DOC_ID",
		Short: "List document blocks",
		Long:  "List the blocks of a document at a revision, the latest by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.DocumentID = args[0]
			req.PageSize = opts.pageSize

			fetcher := &PageFetcher[lark.DocxBlockList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.DocxBlockList], error) {
					return client.Docx().ListBlocks(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.DocxBlockList], error) {
					return client.Docx().ListBlocksWithIterator(ctx, &req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.DocxBlockList) []lark.DocxBlock { return p.Items },
				&OutputRenderer[lark.DocxBlock]{
					Header: []string{"Block ID", "Type", "Parent", "Children"},
					Row: func(b lark.DocxBlock) []string {
						return []string{b.BlockID, strconv.Itoa(b.BlockType), valueOrNA(b.ParentID), strconv.Itoa(len(b.Children))}
					},
				})
		},
	}

	cmd.Flags().IntVar(&req.DocumentRevisionID, "revision", 0, "document revision, 0 for the latest")
	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of user IDs")
	addPageFlags(cmd, &opts, constants.MaxDocxPageSize)

	return cmd
}
