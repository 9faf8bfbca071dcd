package main

import (
	"errors"
	"flag"
	"io"

	json "github.com/goccy/go-json"
)

// schemaCmd prints the JSON Schema projection of a definition.
func schemaCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	var file string
	var indent bool
	fs.StringVar(&file, "f", "", "form definition (YAML)")
	fs.BoolVar(&indent, "indent", true, "indent the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		fs.Usage()
		return errors.New("-f is required")
	}
	_, obj, err := loadDefinition(file)
	if err != nil {
		return err
	}
	var b []byte
	if indent {
		b, err = json.MarshalIndent(obj.JSONSchema(), "", "  ")
	} else {
		b, err = json.Marshal(obj.JSONSchema())
	}
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(b, '\n'))
	return err
}
