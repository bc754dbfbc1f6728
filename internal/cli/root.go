package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var sharedGlobalOptionOrder = []string{
	"format",
	"address",
	"lat",
	"lon",
	"minutes",
	"category",
	"verbose",
}

var sharedGlobalOptionIndex = func() map[string]int {
	index := make(map[string]int, len(sharedGlobalOptionOrder))
	for i, name := range sharedGlobalOptionOrder {
		index[name] = i
	}
	return index
}()

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := resolvedVersion(deps.Version)

	root := &cobra.Command{
		Use:           "lunchspin",
		Short:         "Discover nearby lunch spots and let the roulette pick one.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return errVersionShown
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if !showVersion {
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			return errVersionShown
		},
	}
	root.Flags().BoolP("version", "v", false, "Show CLI version and exit.")
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	defaultHelpFunc := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == root {
			renderRootHelp(cmd.OutOrStdout(), root)
			return
		}
		defaultHelpFunc(cmd, args)
	})

	root.AddCommand(newLocateCommand(deps))
	root.AddCommand(newDiscoverCommand(deps))
	root.AddCommand(newSpinCommand(deps))
	root.AddCommand(newResetCommand(deps))
	root.AddCommand(newConfigureCommand(deps))

	return root
}

func renderRootHelp(out io.Writer, root *cobra.Command) {
	_, _ = fmt.Fprintf(out, "%s: %s\n\n", root.Name(), root.Short)
	_, _ = fmt.Fprintf(out, "usage: %s <command> [options]\n", root.Name())
	_, _ = fmt.Fprintln(out, "shared options (accepted by discover and spin):")
	for _, option := range sharedOptions(root) {
		_, _ = fmt.Fprintf(out, "  %s: %s\n", option.token, option.usage)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "commands:")
	for _, cmd := range visibleCommands(root) {
		_, _ = fmt.Fprintf(out, "  %s\n", cmd.Name())
		_, _ = fmt.Fprintf(out, "    %s\n", cmd.Short)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "notes:")
	_, _ = fmt.Fprintln(out, "  - without location flags the saved session center is used, falling back to the built-in default.")
	_, _ = fmt.Fprintln(out, "  - spin remembers its result; run reset to forget it.")
}

func visibleCommands(parent *cobra.Command) []*cobra.Command {
	commands := make([]*cobra.Command, 0)
	for _, cmd := range parent.Commands() {
		if cmd.Hidden {
			continue
		}
		commands = append(commands, cmd)
	}
	return commands
}

type optionDoc struct {
	name  string
	token string
	usage string
}

func sharedOptions(root *cobra.Command) []optionDoc {
	discovered := map[string]optionDoc{}
	for _, cmd := range visibleCommands(root) {
		cmd.NonInheritedFlags().VisitAll(func(flag *pflag.Flag) {
			if flag.Hidden || flag.Name == "help" || !isSharedGlobalFlag(flag) {
				return
			}
			if _, ok := discovered[flag.Name]; ok {
				return
			}
			discovered[flag.Name] = optionDoc{
				name:  flag.Name,
				token: flagToken(flag),
				usage: strings.TrimSpace(flag.Usage),
			}
		})
	}

	options := make([]optionDoc, 0, len(discovered))
	for _, option := range discovered {
		options = append(options, option)
	}
	sort.Slice(options, func(i, j int) bool {
		return sharedGlobalOptionIndex[options[i].name] < sharedGlobalOptionIndex[options[j].name]
	})
	return options
}

func isSharedGlobalFlag(flag *pflag.Flag) bool {
	if flag == nil || flag.Annotations == nil {
		return false
	}
	values, ok := flag.Annotations[sharedGlobalFlagAnnotation]
	if !ok || len(values) == 0 {
		return false
	}
	return strings.EqualFold(values[0], "true") || values[0] == "1"
}

func flagToken(flag *pflag.Flag) string {
	token := "--" + flag.Name
	if flag.Shorthand != "" {
		token += "/-" + flag.Shorthand
	}
	return token
}
