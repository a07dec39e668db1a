package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/pkg/signature"
)

// SignatureCmd creates the 'signature' command, which lists the classes a
// JVM descriptor or generic signature names.
func SignatureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signature <signature>...",
		Short: "List the classes named by a descriptor or generic signature",
		Example: `  wren signature '(Ljava/lang/String;[Lcom/example/Item;)V'
  wren signature 'Ljava/util/List<Lcom/example/Row;>;'`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, sig := range args {
				for _, class := range signature.Classes(sig) {
					fmt.Fprintln(cmd.OutOrStdout(), class)
				}
			}
		},
	}
}
