package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yeisme/exceleasy/pkg/internal/storage/db"
	"github.com/yeisme/exceleasy/pkg/internal/storage/kv"
	"github.com/yeisme/exceleasy/pkg/internal/storage/mq"
)

// backendKinds 可插拔后端的类别与已编译进二进制的实现.
var backendKinds = map[string]func() []string{
	"db": func() []string { return stringsOf(db.GetRegisteredDBTypes()) },
	"kv": func() []string { return stringsOf(kv.GetRegisteredKVTypes()) },
	"mq": func() []string { return stringsOf(mq.RegisteredTypes()) },
}

var backendsCmd = &cobra.Command{
	Use:       "backends [db|kv|mq]",
	Short:     "list storage, cache and event bus drivers compiled into this binary",
	Aliases:   []string{"drivers"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"db", "kv", "mq"},
	Run: func(cmd *cobra.Command, args []string) {
		kinds := args
		if len(kinds) == 0 {
			kinds = []string{"db", "kv", "mq"}
		}

		for _, k := range kinds {
			printBackends(cmd.OutOrStdout(), k, backendKinds[k]())
		}
	},
}

func printBackends(w io.Writer, kind string, names []string) {
	slices.Sort(names)

	fmt.Fprintf(w, "%s:\n", kind)

	for _, n := range names {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}

func stringsOf[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}

	return out
}

// registerBackendsCommands 注册 backends 命令.
func registerBackendsCommands() {
	rootCmd.AddCommand(backendsCmd)
}
