package commands

import (
	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/spf13/cobra"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the lark CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Version: version, Commit: commit, Built: date}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			switch format {
			case constants.FormatJSON:
				return StandardJSONRenderer(w, info)
			case constants.FormatYAML:
				return StandardYAMLRenderer(w, info)
			default:
				return renderTable(w, []string{"Property", "Value"}, [][]string{
					{"Version", version},
					{"Commit", commit},
					{"Built", date},
				})
			}
		},
	}
}
