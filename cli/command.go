// Package cli is a small command dispatcher: one level of commands, each
// with its own flags, plus flags shared by every command.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Command is a single verb of the application.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
	Flags []*Flag
}

// Flag binds a command line option to a pointer. Value must be *string,
// *bool or *int.
type Flag struct {
	Name     string
	Short    string
	Usage    string
	Required bool
	Value    interface{}
}

// App holds the commands and where help text goes. Out and Err default to
// the process streams.
type App struct {
	Name        string
	Version     string
	Description string
	Commands    []*Command
	GlobalFlags []*Flag

	Out io.Writer
	Err io.Writer
}

// NewApp creates an application with no commands.
func NewApp(name, version, description string) *App {
	return &App{
		Name:        name,
		Version:     version,
		Description: description,
		Commands:    []*Command{},
		GlobalFlags: []*Flag{},
		Out:         os.Stdout,
		Err:         os.Stderr,
	}
}

func (a *App) AddCommand(cmd *Command) {
	a.Commands = append(a.Commands, cmd)
}

func (a *App) AddGlobalFlag(flag *Flag) {
	a.GlobalFlags = append(a.GlobalFlags, flag)
}

// Execute runs the application with the process arguments.
func (a *App) Execute() error {
	return a.Run(os.Args[1:])
}

// Run dispatches args. Global flags may appear before or after the command
// name.
func (a *App) Run(args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	switch args[0] {
	case "--version":
		fmt.Fprintf(a.Out, "%s version %s\n", a.Name, a.Version)
		return nil
	case "--help", "-h", "help":
		a.printUsage()
		return nil
	}

	_, rest, err := parseFlags(args, a.GlobalFlags)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		a.printUsage()
		return nil
	}

	cmd := a.find(rest[0])
	if cmd == nil {
		fmt.Fprintf(a.Err, "Unknown command: %s\n\n", rest[0])
		a.printUsage()
		return fmt.Errorf("unknown command: %s", rest[0])
	}

	cmdArgs := rest[1:]
	for _, arg := range cmdArgs {
		if arg == "--help" || arg == "-h" {
			cmd.PrintUsage(a.Out)
			return nil
		}
	}

	_, finalArgs, err := parseFlags(cmdArgs, cmd.Flags)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %s has no run function", cmd.Name)
	}
	return cmd.Run(finalArgs)
}

func (a *App) find(name string) *Command {
	for _, c := range a.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// parseFlags consumes the flags it knows and returns the rest in order.
// Both --name value and --name=value are accepted.
func parseFlags(args []string, flags []*Flag) (map[string]interface{}, []string, error) {
	parsed := make(map[string]interface{})
	remaining := []string{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			remaining = append(remaining, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if idx := strings.Index(name, "="); idx != -1 {
			name, value, hasValue = name[:idx], name[idx+1:], true
		}

		flag := lookupFlag(flags, name)
		if flag == nil {
			remaining = append(remaining, arg)
			continue
		}

		if _, isBool := flag.Value.(*bool); isBool && !hasValue {
			value, hasValue = "true", true
		}
		if !hasValue {
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return nil, nil, fmt.Errorf("flag --%s needs a value", flag.Name)
			}
			i++
			value = args[i]
		}

		if err := setFlagValue(flag, value); err != nil {
			return nil, nil, err
		}
		parsed[flag.Name] = value
	}

	for _, flag := range flags {
		if flag.Required {
			if _, ok := parsed[flag.Name]; !ok {
				return nil, nil, fmt.Errorf("flag --%s is required", flag.Name)
			}
		}
	}

	return parsed, remaining, nil
}

func lookupFlag(flags []*Flag, name string) *Flag {
	for _, f := range flags {
		if f.Name == name || (f.Short != "" && f.Short == name) {
			return f
		}
	}
	return nil
}

func setFlagValue(flag *Flag, value string) error {
	switch v := flag.Value.(type) {
	case *string:
		*v = value
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("flag --%s: %q is not a boolean", flag.Name, value)
		}
		*v = b
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("flag --%s: %q is not a number", flag.Name, value)
		}
		*v = n
	default:
		return fmt.Errorf("flag --%s has unsupported type %T", flag.Name, flag.Value)
	}
	return nil
}

func (a *App) printUsage() {
	fmt.Fprintf(a.Out, "%s - %s\n\n", a.Name, a.Description)
	fmt.Fprintf(a.Out, "Usage:\n  %s [command] [flags]\n\n", a.Name)

	if len(a.Commands) > 0 {
		fmt.Fprintln(a.Out, "Commands:")
		for _, cmd := range a.Commands {
			fmt.Fprintf(a.Out, "  %-15s %s\n", cmd.Name, cmd.Short)
		}
		fmt.Fprintln(a.Out)
	}

	if len(a.GlobalFlags) > 0 {
		fmt.Fprintln(a.Out, "Global Flags:")
		printFlags(a.Out, a.GlobalFlags)
		fmt.Fprintln(a.Out)
	}

	fmt.Fprintf(a.Out, "Use '%s [command] --help' for more information about a command.\n", a.Name)
}

// PrintUsage writes the help text of a single command.
func (cmd *Command) PrintUsage(w io.Writer) {
	if cmd.Long != "" {
		fmt.Fprintln(w, cmd.Long)
		fmt.Fprintln(w)
	}

	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	fmt.Fprintf(w, "Usage:\n  %s\n\n", usage)

	if len(cmd.Flags) > 0 {
		fmt.Fprintln(w, "Flags:")
		printFlags(w, cmd.Flags)
		fmt.Fprintln(w)
	}
}

func printFlags(w io.Writer, flags []*Flag) {
	for _, flag := range flags {
		short := ""
		if flag.Short != "" {
			short = fmt.Sprintf("-%s, ", flag.Short)
		}
		required := ""
		if flag.Required {
			required = " (required)"
		}
		fmt.Fprintf(w, "  %s--%s\t%s%s\n", short, flag.Name, flag.Usage, required)
	}
}
