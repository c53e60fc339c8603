package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vellum-engine/vellum/internal/cli/ui"
	"github.com/vellum-engine/vellum/internal/inspect"
	"github.com/vellum-engine/vellum/runtime/reflection"
)

// newInspectCommand creates the inspect command group
func newInspectCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse the reflection registry",
		Long: `Browse the reflection registry built from the loaded modules.

Type, enum and attribute names may be given in full
(github.com/vellum-engine/vellum/internal/engine.Sprite) or by any
unambiguous suffix (engine.Sprite, Sprite).`,
		Example: `  # List every registered type
  vellum inspect types

  # List the types implementing an interface
  vellum inspect types --bucket Renderable

  # Describe one type as JSON
  vellum inspect type Sprite --format json

  # Types carrying an attribute
  vellum inspect attrs Component`,
	}

	cmd.AddCommand(newInspectTypesCommand(e))
	cmd.AddCommand(newInspectTypeCommand(e))
	cmd.AddCommand(newInspectEnumsCommand(e))
	cmd.AddCommand(newInspectBucketCommand(e))
	cmd.AddCommand(newInspectAttrsCommand(e))
	cmd.AddCommand(newInspectModulesCommand(e))

	return cmd
}

func newInspectTypesCommand(e *env) *cobra.Command {
	var bucket, module string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if module != "" {
				if _, ok := e.reg.ModuleInfo(module); !ok {
					err := fmt.Errorf("module %q: %w", module, inspect.ErrNotFound)
					return e.lookupFailed(cmd, "module", module, moduleNames(e.reg), "vellum inspect modules", err)
				}
			}
			types, err := inspect.ListTypes(e.reg, bucket, module)
			if err != nil {
				return e.lookupFailed(cmd, "type", bucket, typeNames(e.reg), "vellum inspect types", err)
			}
			if e.json() {
				return writeJSON(cmd.OutOrStdout(), types)
			}
			renderSummaries(cmd.OutOrStdout(), types, e.verbose, e.colorless())
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Only types implementing this interface")
	cmd.Flags().StringVar(&module, "module", "", "Only types contributed by this module")
	return cmd
}

func newInspectTypeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "type <name>",
		Short: "Describe a type: fields, methods, constructors and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := inspect.FindType(e.reg, args[0])
			if err != nil {
				return e.lookupFailed(cmd, "type", args[0], typeNames(e.reg), "vellum inspect types", err)
			}
			view := inspect.Describe(d)
			if e.json() {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			renderType(cmd.OutOrStdout(), view, e.colorless())
			return nil
		},
	}
}

func newInspectEnumsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "enums [name]",
		Short: "List registered enums, or the entries of one enum",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				en, err := inspect.FindEnum(e.reg, args[0])
				if err != nil {
					return e.lookupFailed(cmd, "enum", args[0], enumNames(e.reg), "vellum inspect enums", err)
				}
				view := inspect.DescribeEnum(en)
				if e.json() {
					return writeJSON(out, view)
				}
				ui.Header(out, ui.ShortName(view.Name), e.colorless())
				table := ui.NewTable(out, e.colorless(), "Entry", "Value")
				for _, entry := range view.Entries {
					table.AddRow(entry.Name, strconv.FormatInt(entry.Value, 10))
				}
				table.Render()
				return nil
			}

			views := inspect.DescribeEnums(e.reg.Enums())
			if e.json() {
				return writeJSON(out, views)
			}
			table := ui.NewTable(out, e.colorless(), "Enum", "Version", "Entries")
			for _, v := range views {
				names := make([]string, len(v.Entries))
				for i, entry := range v.Entries {
					names[i] = entry.Name
				}
				table.AddRow(ui.ShortName(v.Name), v.Version, strings.Join(names, ", "))
			}
			table.Render()
			return nil
		},
	}
}

func newInspectBucketCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bucket <interface>",
		Short: "List the types implementing an interface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := inspect.Bucket(e.reg, args[0])
			if err != nil {
				return e.lookupFailed(cmd, "type", args[0], typeNames(e.reg), "vellum inspect types", err)
			}
			if e.json() {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			ui.Header(cmd.OutOrStdout(), ui.ShortName(view.Interface), e.colorless())
			renderSummaries(cmd.OutOrStdout(), view.Types, e.verbose, e.colorless())
			return nil
		},
	}
}

func newInspectAttrsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "attrs [attribute]",
		Short: "List known attributes, or the types carrying one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names := inspect.KnownAttributes(e.reg)
				if e.json() {
					return writeJSON(out, names)
				}
				for _, name := range names {
					fmt.Fprintln(out, ui.ShortName(name))
				}
				return nil
			}

			full, defs, err := inspect.TypesWithAttribute(e.reg, args[0])
			if err != nil {
				return e.lookupFailed(cmd, "attribute", args[0], inspect.KnownAttributes(e.reg), "vellum inspect attrs", err)
			}
			types := inspect.Summaries(defs)
			if e.json() {
				return writeJSON(out, map[string]any{"attribute": full, "types": types})
			}
			ui.Header(out, ui.ShortName(full), e.colorless())
			renderSummaries(out, types, e.verbose, e.colorless())
			return nil
		},
	}
}

func newInspectModulesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List loaded modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modules := e.reg.Modules()
			if e.json() {
				return writeJSON(cmd.OutOrStdout(), modules)
			}
			table := ui.NewTable(cmd.OutOrStdout(), e.colorless(), "Module", "Types", "Enums", "Load ID")
			for _, m := range modules {
				table.AddRow(m.Name, strconv.Itoa(len(m.Types)), strconv.Itoa(len(m.Enums)), m.LoadID)
			}
			table.Render()
			return nil
		},
	}
}

// lookupFailed prints a not-found error with suggestions. Other errors are
// returned unchanged for Execute to print.
func (e *env) lookupFailed(cmd *cobra.Command, kind, name string, candidates []string, listCommand string, err error) error {
	if !errors.Is(err, inspect.ErrNotFound) {
		return err
	}
	suggestions := ui.FindSimilar(name, candidates)
	fmt.Fprint(cmd.ErrOrStderr(), ui.NotFoundError(kind, name, suggestions, listCommand, e.colorless()))
	return reportedError{err}
}

func renderSummaries(w io.Writer, types []inspect.TypeSummary, verbose, noColor bool) {
	headers := []string{"Type", "Version", "Vars", "Funcs", "Bases"}
	if verbose {
		headers = append(headers, "Handle", "User Version")
	}
	table := ui.NewTable(w, noColor, headers...)
	for _, t := range types {
		name := ui.ShortName(t.Name)
		if t.Interface {
			name += " (interface)"
		}
		bases := make([]string, len(t.Bases))
		for i, b := range t.Bases {
			bases[i] = ui.ShortName(b)
		}
		row := []string{name, t.Version, strconv.Itoa(t.Vars), strconv.Itoa(t.Funcs), strings.Join(bases, ", ")}
		if verbose {
			row = append(row, t.Handle, strconv.FormatUint(uint64(t.UserVersion), 10))
		}
		table.AddRow(row...)
	}
	table.Render()
}

func renderType(w io.Writer, v inspect.TypeView, noColor bool) {
	ui.Header(w, v.Name, noColor)

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Handle", v.Handle)
	kv.AddRow("Version", v.Version)
	kv.AddRow("User version", strconv.FormatUint(uint64(v.UserVersion), 10))
	kv.AddRow("Interface", strconv.FormatBool(v.Interface))
	if len(v.Bases) > 0 {
		kv.AddRow("Bases", strings.Join(v.Bases, ", "))
	}
	if len(v.Attributes) > 0 {
		kv.AddRow("Attributes", attributeList(v.Attributes))
	}
	if len(v.Constructors) > 0 {
		kv.AddRow("Constructors", strings.Join(v.Constructors, " "))
	}
	kv.Render()

	if len(v.Fields) > 0 {
		fmt.Fprintln(w)
		fields := ui.NewTable(w, noColor, "Field", "Type", "Shape", "Flags", "Attributes")
		for _, f := range v.Fields {
			shape := f.Shape
			if f.Key != "" {
				shape += "[" + f.Key + "]"
			}
			flags := ui.Flags(map[string]bool{
				"readonly":    f.ReadOnly,
				"optional":    f.Optional,
				"noserialize": f.NoSerialize,
				"nocopy":      f.NoCopy,
			}, "readonly", "optional", "noserialize", "nocopy")
			fields.AddRow(f.Name, f.Type, shape, flags, attributeList(f.Attributes))
		}
		fields.Render()
	}

	funcs := append(append([]inspect.FuncView{}, v.Methods...), v.Statics...)
	if len(funcs) > 0 {
		fmt.Fprintln(w)
		methods := ui.NewTable(w, noColor, "Function", "Signature", "Owner", "Attributes")
		for _, f := range funcs {
			name := f.Name
			if f.Const {
				name += " (const)"
			}
			methods.AddRow(name, f.Signature, ui.ShortName(f.Owner), attributeList(f.Attributes))
		}
		methods.Render()
	}
}

func attributeList(attrs []inspect.AttributeView) string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = ui.ShortName(a.Name)
		if a.Value != nil {
			names[i] += fmt.Sprintf("%+v", a.Value)
		}
	}
	return strings.Join(names, ", ")
}

func typeNames(reg *reflection.Registry) []string {
	defs := reg.All()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name()
	}
	return names
}

func enumNames(reg *reflection.Registry) []string {
	enums := reg.Enums()
	names := make([]string, len(enums))
	for i, en := range enums {
		names[i] = en.Name()
	}
	return names
}

func moduleNames(reg *reflection.Registry) []string {
	modules := reg.Modules()
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	return names
}
