// cmd/rosyc/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/pkg/errors"

	rosyerrors "github.com/hiibolt/rosyc/internal/errors"
	"github.com/hiibolt/rosyc/internal/emitter"
	"github.com/hiibolt/rosyc/internal/lexer"
	"github.com/hiibolt/rosyc/internal/parser"
)

const (
	defaultOrder = 10
	defaultVars  = 6
)

func main() {
	os.Exit(mainExit())
}

// mainExit is main's body, returning an exit code instead of calling
// os.Exit directly so it can be driven from a testscript-backed test
// binary without terminating the test process.
func mainExit() int {
	debug := flag.Bool("debug", false, "pretty-print the parsed statement list before emission")
	order := flag.Int("order", defaultOrder, "default DA/CD order used when the program has no explicit DAINI")
	vars := flag.Int("vars", defaultVars, "default DA/CD variable count used when the program has no explicit DAINI")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: rosyc <source.cosy> [output.rs]")
		return 2
	}
	sourcePath := args[0]

	if err := run(sourcePath, outputPathFor(args, sourcePath), *debug, *order, *vars); err != nil {
		fmt.Fprintln(os.Stderr, rosyerrors.FormatChain(err))
		return 1
	}
	return 0
}

func outputPathFor(args []string, sourcePath string) string {
	if len(args) >= 2 {
		return args[1]
	}
	return fmt.Sprintf("%s.rosy-%s.rs", sourcePath, uuid.New().String()[:8])
}

func run(sourcePath, outputPath string, debug bool, order, vars int) error {
	start := time.Now()

	log.Printf("reading %s", sourcePath)
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrap(err, "could not read source file")
	}

	scanner := lexer.NewScanner(string(source), filepath.Base(sourcePath))
	tokens := scanner.ScanTokens()
	if lexErrs := scanner.Errors(); len(lexErrs) > 0 {
		list := &rosyerrors.List{}
		list.AddAll(lexErrs)
		return errors.WithMessage(list, "scanning failed")
	}

	p := parser.NewParserWithSource(tokens, string(source), filepath.Base(sourcePath))
	stmts, err := p.Parse()
	if err != nil {
		return errors.WithMessage(err, "parsing failed")
	}
	log.Printf("parsed %d top-level statement(s)", len(stmts))

	if debug {
		for _, s := range stmts {
			fmt.Fprintln(os.Stderr, pretty.Sprint(s))
		}
	}

	e := emitter.New()
	body, err := e.Emit(stmts)
	if err != nil {
		return errors.WithMessage(err, "compilation failed")
	}

	var defaultDaini string
	if !e.SawDaini {
		defaultDaini = fmt.Sprintf("DA::init(%s as u32, %s as u32);", strconv.Itoa(order), strconv.Itoa(vars))
	}

	output, err := emitter.Splice(body, defaultDaini)
	if err != nil {
		return errors.Wrap(err, "could not splice emitted code into the output template")
	}

	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
		return errors.Wrap(err, "could not write output file")
	}

	elapsed := time.Since(start)
	log.Printf("wrote %s (%s) from %s (%s) in %s",
		outputPath, humanize.Bytes(uint64(len(output))),
		sourcePath, humanize.Bytes(uint64(len(source))),
		elapsed)
	return nil
}
