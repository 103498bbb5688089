package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpDescStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Italic(true).
			MarginBottom(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(goodColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// It lists the selected command's arguments, its subcommands and every
// flag visible from it, global flags included.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		sb.WriteString(TitleStyle.Render("voicebridge"))
		sb.WriteString("\n")
		if help := node.Help; help != "" {
			sb.WriteString(helpDescStyle.Render(help))
			sb.WriteString("\n")
		}

		sb.WriteString(SectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usageLine(ctx, node))
		sb.WriteString("\n")

		if args := getArguments(node); len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.help)
				}
				sb.WriteString("\n")
			}
		}

		if cmds := getCommands(node); len(cmds) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Commands:"))
			sb.WriteString("\n")
			for _, cmd := range cmds {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(cmd.name))
				if cmd.help != "" {
					sb.WriteString("  ")
					sb.WriteString(cmd.help)
				}
				sb.WriteString("\n")
			}
		}

		if flags := getFlags(node); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, flag := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(flag.flags))
				if flag.help != "" {
					sb.WriteString("  ")
					sb.WriteString(flag.help)
				}
				if flag.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func usageLine(ctx *kong.Context, node *kong.Node) string {
	path := ctx.Model.Name
	if node.Type == kong.CommandNode {
		path = ctx.Model.Name + " " + node.Path()
	}
	if len(node.Children) > 0 {
		return path + " <command> [flags]"
	}
	line := path + " [flags]"
	for _, arg := range node.Positional {
		line += " " + arg.Summary()
	}
	return line
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func getArguments(node *kong.Node) []argument {
	var args []argument
	for _, arg := range node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func getCommands(node *kong.Node) []argument {
	var cmds []argument
	for _, child := range node.Children {
		if child.Hidden {
			continue
		}
		cmds = append(cmds, argument{name: child.Name, help: child.Help})
	}
	return cmds
}

func getFlags(node *kong.Node) []flag {
	var flags []flag

	// Always include help flag
	flags = append(flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	})

	for n := node; n != nil; n = n.Parent {
		for _, f := range n.Flags {
			if f.Name == "help" || f.Hidden {
				continue
			}

			flagStr := ""
			if f.Short != 0 {
				flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			} else {
				flagStr = fmt.Sprintf("--%s", f.Name)
			}

			if !f.IsBool() && f.PlaceHolder != "" {
				flagStr += "=" + strings.ToUpper(f.PlaceHolder)
			}

			flags = append(flags, flag{
				flags:      flagStr,
				help:       f.Help,
				defaultVal: f.Default,
			})
		}
	}

	return flags
}
