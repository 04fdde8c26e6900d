package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/spf13/cobra"
)

// NewMDMCommand creates the mdm command group.
func NewMDMCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdm",
		Short: "Master data",
		Long:  "List and change user to master data bindings",
	}

	cmd.AddCommand(newMDMListCommand())
	cmd.AddCommand(newMDMBindCommand("bind", "Bind users to master data", true))
	cmd.AddCommand(newMDMBindCommand("unbind", "Unbind users from master data", false))

	return cmd
}

// relationFlags holds the flags describing a relation.
type relationFlags struct {
	userIDType string
	relation   lark.UserAuthDataRelation
}

func (f *relationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userIDType, "user-id-type", "", "ID type of user IDs")
	cmd.Flags().StringVar(&f.relation.RootDimensionType, "root-dimension-type", "", "root dimension type")
	cmd.Flags().StringSliceVar(&f.relation.SubDimensionTypes, "sub-dimension-types", nil, "sub dimension types")
	cmd.Flags().StringSliceVar(&f.relation.AuthorizedUserIDs, "user-ids", nil, "authorized user IDs")
	cmd.Flags().StringVar(&f.relation.UamsAppID, "uams-app-id", "", "UAMS application ID")
	cmd.Flags().StringVar(&f.relation.DimensionValue, "dimension-value", "", "dimension value")
}

func newMDMListCommand() *cobra.Command {
	var (
		opts  pageOptions
		flags relationFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user auth data relations",
		Long:  "List the bindings matching the given filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req := &lark.ListUserAuthDataRelationsRequest{
				UserIDType: flags.userIDType,
				PageSize:   opts.pageSize,
				Filter:     flags.relation,
			}

			fetcher := &PageFetcher[lark.UserAuthDataRelationList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.UserAuthDataRelationList], error) {
					return client.MDM().ListUserAuthDataRelations(ctx, req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.UserAuthDataRelationList], error) {
					return client.MDM().ListUserAuthDataRelationsWithIterator(ctx, req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.UserAuthDataRelationList) []lark.UserAuthDataRelation { return p.Items },
				&OutputRenderer[lark.UserAuthDataRelation]{
					Header: []string{"Root Dimension", "Value", "App", "Users"},
					Row: func(r lark.UserAuthDataRelation) []string {
						return []string{r.RootDimensionType, valueOrNA(r.DimensionValue), r.UamsAppID, strings.Join(r.AuthorizedUserIDs, ", ")}
					},
				})
		},
	}

	flags.register(cmd)
	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}

func newMDMBindCommand(use, short string, bind bool) *cobra.Command {
	var flags relationFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req := &lark.BindUserAuthDataRequest{UserIDType: flags.userIDType, Relation: flags.relation}

			if bind {
				err = client.MDM().Bind(cmd.Context(), req)
			} else {
				err = client.MDM().Unbind(cmd.Context(), req)
			}

			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d user(s) in %s\n", use, len(flags.relation.AuthorizedUserIDs), flags.relation.RootDimensionType)

			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
