// Command console prices subscriptions and invoices from JSON requests.
//
// Usage:
//
//	console quote   [-in file]   resolve a price (ResolvePriceRequest)
//	console totals  [-in file]   compute invoice totals (ComputeTotalsRequest)
//	console plan    [-in file]   quote a plan definition (CreatePlanRequest)
//	console invoice [-in file]   draft an invoice (CreateInvoiceRequest)
//
// The request is read from -in, or stdin when omitted. The result is printed
// to stdout as JSON; failures print an error response and exit non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const lifecycleTimeout = 15 * time.Second

type command func(ctx context.Context, svc *Services, in io.Reader) (interface{}, error)

var commands = map[string]command{
	"quote":   runQuote,
	"totals":  runTotals,
	"plan":    runPlan,
	"invoice": runInvoice,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)
	inPath := flags.String("in", "", "request file (default stdin)")
	if err := flags.Parse(args[1:]); err != nil {
		return 2
	}

	in := stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			return fail(stdout, stderr, ierr.WithError(err).
				WithHintf("Could not open %s", *inPath).
				Mark(ierr.ErrValidation))
		}
		defer f.Close()
		in = f
	}

	var svc Services
	app := newApp(&svc)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "failed to build application: %v\n", err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(stderr, "failed to start application: %v\n", err)
		return 1
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	ctx := types.WithRequestID(context.Background(), types.GenerateUUID())
	ctx = types.WithUserID(ctx, "console")

	result, err := cmd(ctx, &svc, in)
	if err != nil {
		return fail(stdout, stderr, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "failed to write result: %v\n", err)
		return 1
	}
	return 0
}

func runQuote(ctx context.Context, svc *Services, in io.Reader) (interface{}, error) {
	var req dto.ResolvePriceRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return svc.Pricing.Resolve(ctx, req)
}

func runTotals(ctx context.Context, svc *Services, in io.Reader) (interface{}, error) {
	var req dto.ComputeTotalsRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return svc.Pricing.ComputeInvoiceTotals(ctx, req)
}

func runPlan(ctx context.Context, svc *Services, in io.Reader) (interface{}, error) {
	var req dto.CreatePlanRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return svc.Plans.CreatePlan(ctx, req)
}

func runInvoice(ctx context.Context, svc *Services, in io.Reader) (interface{}, error) {
	var req dto.CreateInvoiceRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return svc.Invoices.CreateInvoice(ctx, req)
}

func decode(in io.Reader, v interface{}) error {
	if err := json.NewDecoder(in).Decode(v); err != nil {
		return ierr.WithError(err).
			WithHint("Request body must be valid JSON").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func fail(stdout, stderr io.Writer, err error) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(ierr.ToErrorResponse(err)); encErr != nil {
		fmt.Fprintf(stderr, "%v\n", err)
	}
	return 1
}

func usage(w io.Writer) {
	names := lo.Keys(commands)
	sort.Strings(names)
	fmt.Fprintf(w, "usage: console <%s> [-in file]\n", strings.Join(names, "|"))
}
