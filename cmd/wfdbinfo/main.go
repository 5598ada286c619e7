// Command wfdbinfo prints the contents of WFDB records: header fields,
// per-lead statistics and annotation counts by beat class.
//
// Usage:
//
//	wfdbinfo [flags] [record ...]
//
// Without arguments it prints info for every record of the directory.
//
// Examples:
//
//	wfdbinfo -data ./mitdb
//	wfdbinfo -data ./mitdb 100 119
//	wfdbinfo -data ./mitdb -list
//	wfdbinfo -data ./mitdb -annotator qrs 100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-ecg/ecg/beat"
	"github.com/cwbudde/algo-ecg/ecg/wfdb"
	timestats "github.com/cwbudde/algo-ecg/stats/time"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wfdbinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("data", ".", "record database directory")
	pattern := fs.String("pattern", wfdb.DefaultPattern, "record glob inside the data directory")
	annotator := fs.String("annotator", wfdb.DefaultAnnotator, "annotation file extension")
	list := fs.Bool("list", false, "list record names only")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: wfdbinfo [flags] [record ...]\n\n")
		fmt.Fprintf(stderr, "Prints header fields, lead statistics and beat counts of WFDB records.\n")
		fmt.Fprintf(stderr, "Without arguments, prints info for every record of the directory.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  wfdbinfo -data ./mitdb\n")
		fmt.Fprintf(stderr, "  wfdbinfo -data ./mitdb 100 119\n")
		fmt.Fprintf(stderr, "  wfdbinfo -data ./mitdb -list\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	db := wfdb.Open(*dir, wfdb.WithPattern(*pattern), wfdb.WithAnnotator(*annotator))
	names := fs.Args()
	if len(names) == 0 {
		var err error
		if names, err = db.Records(ctx); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	if *list {
		for _, n := range names {
			fmt.Fprintln(stdout, n)
		}
		return 0
	}

	if err := printRecords(ctx, stdout, stderr, db, names); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printRecords(ctx context.Context, stdout, stderr io.Writer, db *wfdb.Database, names []string) error {
	labels := beat.DefaultLabelTable()

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Record\tLead\tFormat\tRate [Hz]\tSamples\tDC\tRMS\tMin\tMax\tN\tS\tF\tV\tU\tOther\n")
	fmt.Fprintf(tw, "------\t----\t------\t---------\t-------\t--\t---\t---\t---\t-\t-\t-\t-\t-\t-----\n")

	failed := 0
	for _, name := range names {
		h, err := db.Reader().ReadHeader(name)
		if err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
			failed++
			continue
		}
		rec, anns, err := db.Load(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(stderr, "warning: %v\n", err)
			failed++
			continue
		}

		var counts beat.Counts
		other := 0
		for _, a := range anns {
			if c, ok := labels.Lookup(a.Symbol); ok {
				counts[c]++
			} else {
				other++
			}
		}

		for i, lead := range rec.Leads {
			s := timestats.Calculate(lead)
			leadName := fmt.Sprintf("%d", i)
			if rec.LeadNames[i] != "" {
				leadName = rec.LeadNames[i]
			}
			// Beat counts belong to the record; print them on its first lead.
			tail := "\t\t\t\t\t"
			if i == 0 {
				tail = fmt.Sprintf("%d\t%d\t%d\t%d\t%d\t%d",
					counts[beat.N], counts[beat.S], counts[beat.F], counts[beat.V], counts[beat.U], other)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
				name, leadName, h.Signals[i].Format, h.SampleRate, s.Length,
				s.DC, s.RMS, s.Min, s.Max, tail)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed == len(names) && failed > 0 {
		return fmt.Errorf("no readable records among %d", failed)
	}
	return nil
}
