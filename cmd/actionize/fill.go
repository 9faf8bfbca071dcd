package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/formdef"
	"github.com/aymenmerabta5/actionize/i18n"
	json "github.com/goccy/go-json"
)

// fillCmd walks the user through a form in the terminal. Every answer goes
// through the controller (change, then blur) so the prompt shows the same
// field errors a browser would.
func fillCmd(ctx context.Context, args []string, d promptDriver, stdout io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	var file, lang string
	fs.StringVar(&file, "f", "", "form definition (YAML)")
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
	action := actionize.Build[map[string]any, map[string]any](obj, func(_ context.Context, in map[string]any) (map[string]any, error) {
		return in, nil
	})
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctrl, err := actionize.New(actionize.BuildConfig[map[string]any, map[string]any](obj, action, nil), actionize.Options[map[string]any]{Logger: log})
	if err != nil {
		return err
	}
	return runFill(ctx, def, ctrl, d, stdout)
}

func runFill(ctx context.Context, def *formdef.Definition, ctrl *actionize.Controller[map[string]any, map[string]any], d promptDriver, stdout io.Writer) error {
	if def.Title != "" {
		printf(stdout, "%s\n", def.Title)
	}
	pending := def.Fields
	for {
		for _, f := range pending {
			if err := askField(ctx, d, ctrl, f, stdout); err != nil {
				return err
			}
		}
		sub := ctrl.FormAction(ctx, formData(def, ctrl.Values()))
		if sub != nil {
			result, err := sub.Wait(ctx)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			_, err = stdout.Write(append(b, '\n'))
			return err
		}

		errs := ctrl.Errors()
		var retry []formdef.FieldDef
		for _, f := range def.Fields {
			if fe, ok := errs[f.Name]; ok {
				printf(stdout, "%s: %s\n", f.DisplayName(), fe.Message)
				retry = append(retry, f)
			}
		}
		if len(retry) == 0 {
			return errInvalidSubmission
		}
		pending = retry
	}
}

func askField(ctx context.Context, d promptDriver, ctrl *actionize.Controller[map[string]any, map[string]any], f formdef.FieldDef, stdout io.Writer) error {
	b := ctrl.Register(f.Name)
	validate := func(v string) error {
		b.OnChange(ctx, v)
		b.OnBlur(ctx)
		if fe, ok := ctrl.FieldError(f.Name); ok {
			return errors.New(fe.Message)
		}
		return nil
	}
	def := b.Value
	if def == "" && f.Default != nil {
		def = actionize.Stringify(f.Default)
	}

	switch f.Type {
	case formdef.TypeBool:
		for {
			yes, err := d.Confirm(ctx, confirmConfig{Message: f.DisplayName(), Help: f.Help, Default: def == "on"})
			if err != nil {
				return err
			}
			v := "off"
			if yes {
				v = "on"
			}
			if err := validate(v); err != nil {
				printf(stdout, "%s\n", err)
				continue
			}
			return nil
		}
	case formdef.TypeEnum:
		for {
			v, err := d.Select(ctx, selectConfig{Message: f.DisplayName(), Options: f.Options, Default: def, Help: f.Help})
			if err != nil {
				return err
			}
			if err := validate(v); err != nil {
				printf(stdout, "%s\n", err)
				continue
			}
			return nil
		}
	case formdef.TypePassword:
		_, err := d.Password(ctx, inputConfig{Message: f.DisplayName(), Help: f.Help, Validator: validate})
		return err
	default:
		_, err := d.Input(ctx, inputConfig{Message: f.DisplayName(), Default: def, Help: f.Help, Validator: validate})
		return err
	}
}

// formData orders the live values by field declaration.
func formData(def *formdef.Definition, values map[string]string) *actionize.FormData {
	fd := actionize.NewFormData()
	for _, f := range def.Fields {
		if v, ok := values[f.Name]; ok {
			fd.Append(f.Name, v)
		}
	}
	return fd
}
