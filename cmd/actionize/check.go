package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/dsl"
	"github.com/aymenmerabta5/actionize/formdef"
	"github.com/aymenmerabta5/actionize/i18n"
)

var errInvalidSubmission = errors.New("submission is invalid")

// checkCmd validates a definition and, with -data, a JSON submission
// against it.
func checkCmd(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var file, data, lang string
	fs.StringVar(&file, "f", "", "form definition (YAML)")
	fs.StringVar(&data, "data", "", "JSON submission to validate, - for stdin")
	fs.StringVar(&lang, "lang", "en", "message language (en, ja)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		fs.Usage()
		return errors.New("-f is required")
	}
	i18n.SetLanguage(lang)

	def, obj, err := loadDefinition(file)
	if err != nil {
		return err
	}
	if data == "" {
		printf(stdout, "ok: %s (%d fields, %d rules)\n", file, len(def.Fields), len(def.Rules))
		return nil
	}

	var r io.Reader = stdin
	if data != "-" {
		f, err := os.Open(data)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	fd, err := actionize.ParseJSON(r)
	if err != nil {
		return err
	}
	if _, err := obj.Parse(ctx, fd.ToMap()); err != nil {
		iss, ok := actionize.AsIssues(err)
		if !ok {
			return err
		}
		printIssues(stdout, iss)
		return errInvalidSubmission
	}
	printf(stdout, "valid\n")
	return nil
}

func loadDefinition(path string) (*formdef.Definition, *dsl.ObjectSchema, error) {
	def, err := formdef.Load(path)
	if err != nil {
		return nil, nil, err
	}
	obj, err := def.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}
	return def, obj, nil
}

// printIssues prints one line per field, sorted, then form-level issues.
func printIssues(w io.Writer, iss actionize.Issues) {
	verr := actionize.NewPerFieldError(iss, nil)
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fe := verr.Fields[name]
		printf(w, "%s: %s (%s)\n", name, fe.Message, fe.Kind)
	}
	for _, it := range iss {
		if it.Field() == "" {
			printf(w, "form: %s (%s)\n", it.Message, it.Code)
		}
	}
}
