package commands

import (
	"context"
	"strings"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/spf13/cobra"
)

// NewLingoCommand creates the lingo command group.
func NewLingoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lingo",
		Short: "Glossary",
		Long:  "Inspect glossary entities",
	}

	entities := &cobra.Command{
		Use:     "entities",
		Aliases: []string{"entity"},
		Short:   "Manage glossary entities",
	}
	entities.AddCommand(newLingoEntitiesListCommand())

	cmd.AddCommand(entities)

	return cmd
}

func newLingoEntitiesListCommand() *cobra.Command {
	var (
		opts pageOptions
		req  lark.ListLingoEntitiesRequest
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List glossary entities",
		Long:  "List the entities of a glossary repository, the tenant glossary by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req.PageSize = opts.pageSize

			fetcher := &PageFetcher[lark.LingoEntityList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.LingoEntityList], error) {
					return client.Lingo().ListEntities(ctx, &req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.LingoEntityList], error) {
					return client.Lingo().ListEntitiesWithIterator(ctx, &req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.LingoEntityList) []lark.LingoEntity { return p.Entities },
				&OutputRenderer[lark.LingoEntity]{
					Header: []string{"ID", "Keys", "Aliases", "Updated"},
					Row: func(e lark.LingoEntity) []string {
						return []string{e.ID, joinTerms(e.MainKeys), joinTerms(e.Aliases), valueOrNA(e.UpdateTime)}
					},
				})
		},
	}

	cmd.Flags().StringVar(&req.RepoID, "repo-id", "", "glossary repository ID")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "entity provider")
	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of user IDs")
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}

func joinTerms(terms []lark.LingoTerm) string {
	keys := make([]string, 0, len(terms))
	for _, t := range terms {
		keys = append(keys, t.Key)
	}

	return strings.Join(keys, ", ")
}
