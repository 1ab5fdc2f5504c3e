package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udonc/udonc/internal/compileerr"
	"github.com/udonc/udonc/internal/config"
	"github.com/udonc/udonc/pkg/udon"
)

var (
	outDir         string
	optimize       bool
	reflectMeta    bool
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a source file to Udon assembly",
	Long: `Compile a source file into one .uasm file per entry class it
declares.

Examples:
  # Compile a file, writing <ClassName>.uasm next to it
  udonc compile behaviour.uts

  # Compile into a specific output directory
  udonc compile behaviour.uts --out build/

  # Compile without running the optimizer
  udonc compile behaviour.uts --optimize=false`,
	Args: cobra.ExactArgs(1),
	RunE: compileFile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: alongside the input file)")
	compileCmd.Flags().BoolVar(&optimize, "optimize", true, "run the TAC optimizer")
	compileCmd.Flags().BoolVar(&reflectMeta, "reflect", false, "emit reflection metadata (__refl_typeid etc.)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileFile(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	cfg := config.Default()
	cfg.Optimize = optimize
	cfg.Reflect = reflectMeta

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	assemblies, diags, err := udon.CompileAll(
		map[string]string{filename: string(content)},
		udon.WithConfig(&cfg),
	)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if compileVerbose && len(diags) > 0 {
		fmt.Fprintln(os.Stderr, compileerr.DebugDump(diags))
	}
	if err != nil {
		return err
	}
	if len(assemblies) == 0 {
		return fmt.Errorf("%s declares no entry class", filename)
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(filename)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	for _, asm := range assemblies {
		outFile := filepath.Join(dir, asm.ClassName+".uasm")
		if err := os.WriteFile(outFile, []byte(asm.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", outFile, err)
		}
		if compileVerbose {
			fmt.Fprintf(os.Stderr, "  %s -> %s\n", asm.ClassName, outFile)
		} else {
			fmt.Printf("Compiled %s -> %s\n", strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), outFile)
		}
	}
	return nil
}
