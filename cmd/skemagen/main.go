package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/skemagen/skemagen"
	"github.com/skemagen/skemagen/gen"
	"github.com/skemagen/skemagen/linker"
	"github.com/skemagen/skemagen/loader"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "skemagen",
		Short:         "skemagen compiles JSON Schema documents into Go type declarations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.AddCommand(newGenerateCommand())
	return cmd
}

type generateOptions struct {
	File             string
	Output           string
	Package          string
	RootName         string
	StripArrayBounds bool
}

func newGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go declarations from a JSON or YAML schema file",
		Long: "Generate Go declarations from a JSON or YAML schema file.\n\n" +
			"Examples:\n" +
			"  # Emit declarations for a schema to stdout\n" +
			"  skemagen generate -f schema.json\n\n" +
			"  # Write a package file\n" +
			"  skemagen generate -f schema.yaml -o types.go --package api\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the schema file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&opts.Package, "package", "types", "Package clause of the generated file")
	cmd.Flags().StringVar(&opts.RootName, "root-name", "", "Name for an untitled root schema")
	cmd.Flags().BoolVar(&opts.StripArrayBounds, "strip-array-bounds", false, "Drop minItems/maxItems instead of expanding tuples")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runGenerate(opts generateOptions) error {
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return err
	}

	root, err := loader.Load(opts.File, data)
	if err != nil {
		return err
	}
	if root, err = linker.Link(root, opts.File); err != nil {
		return err
	}

	logrus.WithField("file", opts.File).Debug("schema loaded")

	tree, err := skemagen.Generate(root, skemagen.Options{
		FileName:         opts.File,
		StripArrayBounds: opts.StripArrayBounds,
	})
	if err != nil {
		return err
	}

	out, err := gen.Render(tree, gen.Options{Package: opts.Package, RootName: opts.RootName})
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(opts.Output, out, 0o644)
}
