package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch sub := os.Args[1]; sub {
	case "check":
		err = checkCmd(ctx, os.Args[2:], os.Stdin, os.Stdout)
	case "schema":
		err = schemaCmd(os.Args[2:], os.Stdout)
	case "fill":
		err = fillCmd(ctx, os.Args[2:], newSurveyDriver(), os.Stdout)
	case "serve":
		err = serveCmd(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `actionize CLI

Usage:
  actionize check  -f form.yaml [-data submission.json|-] [-lang en|ja]
  actionize schema -f form.yaml [-indent]
  actionize fill   -f form.yaml [-lang en|ja]
  actionize serve  [-f form.yaml] [-addr :8080] [-lang en|ja] [-log-level info]

Environment (serve):
  ACTIONIZE_ADDR, ACTIONIZE_DEFINITION, ACTIONIZE_LANG, ACTIONIZE_LOG_LEVEL`)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
