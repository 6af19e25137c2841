// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

// Command ordd compiles a CNF formula in DIMACS format into a BDD and prints
// statistics about it. The ORDD_LOGLEVEL environment variable selects the log
// verbosity.
package main

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dlazaro/ordd"
	"github.com/dlazaro/ordd/dimacs"
)

// Report is the statistics record emitted after construction.
type Report struct {
	XMLName     xml.Name `json:"-" xml:"bdd"`
	File        string   `json:"file" xml:"file"`
	Varnum      int      `json:"variable_count" xml:"variable_count"`
	Clauses     int      `json:"clause_count" xml:"clause_count"`
	NodeCount   int      `json:"node_count" xml:"node_count"`
	SatCount    string   `json:"sat_count" xml:"sat_count"`
	Satisfiable bool     `json:"satisfiable" xml:"satisfiable"`
	ReorderMs   int64    `json:"reorder_ms" xml:"reorder_ms"`
}

func main() {
	var (
		order   string
		dvo     string
		outpath string
		format  string
	)
	root := &cobra.Command{
		Use:   "ordd <file.cnf>",
		Short: "Compile a DIMACS CNF formula into a BDD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args[0], order, dvo, outpath, format)
		},
	}
	root.Flags().StringVar(&order, "order", "none", "static variable order (none|force)")
	root.Flags().StringVar(&dvo, "dvo", "none", "reordering schedule (none|once|converge|threshold:N|sift-threshold:N|timesize:N,MS)")
	root.Flags().StringVarP(&outpath, "out", "o", "", "write the serialized BDD to this path")
	root.Flags().StringVar(&format, "format", "json", "statistics format (json|xml)")
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, path, order, dvo, outpath, format string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	problem, err := dimacs.Parse(f)
	if err != nil {
		return err
	}
	schedule, err := parseSchedule(dvo)
	if err != nil {
		return err
	}
	var b *ordd.BDD
	switch order {
	case "none":
		b, err = ordd.New(problem.Varnum, ordd.Reorder(schedule))
	case "force":
		b, err = ordd.New(problem.Varnum, ordd.Order(dimacs.Force(problem)), ordd.Reorder(schedule))
	default:
		return fmt.Errorf("unknown static order %q", order)
	}
	if err != nil {
		return err
	}
	n, err := b.FromCNF(problem.Clauses)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := b.Reorder(); err != nil && err != ordd.ErrDeadlineExceeded {
		return err
	}
	reorderMs := time.Since(start).Milliseconds()
	report := Report{
		File:        path,
		Varnum:      problem.Varnum,
		Clauses:     len(problem.Clauses),
		NodeCount:   b.Nodecount(n),
		SatCount:    b.Satcount(n).String(),
		Satisfiable: b.Satisfiable(n),
		ReorderMs:   reorderMs,
	}
	if mesg := b.Error(); mesg != "" {
		return fmt.Errorf("invariant failure: %s", mesg)
	}
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case "xml":
		enc := xml.NewEncoder(cmd.OutOrStdout())
		enc.Indent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown statistics format %q", format)
	}
	if outpath != "" {
		out, err := os.Create(outpath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := b.Serialize(out, n); err != nil {
			return err
		}
	}
	return nil
}

func parseSchedule(s string) (ordd.Schedule, error) {
	name, arg, _ := strings.Cut(s, ":")
	switch name {
	case "none":
		return ordd.NoReorder(), nil
	case "once":
		return ordd.ReorderOnce(), nil
	case "converge":
		return ordd.ReorderUntilConvergence(), nil
	case "threshold":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return ordd.Schedule{}, fmt.Errorf("bad threshold %q", arg)
		}
		return ordd.ReorderAtThreshold(n), nil
	case "sift-threshold":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return ordd.Schedule{}, fmt.Errorf("bad threshold %q", arg)
		}
		return ordd.SiftingAtThreshold(n), nil
	case "timesize":
		nodes, ms, found := strings.Cut(arg, ",")
		if !found {
			return ordd.Schedule{}, fmt.Errorf("timesize wants N,MS, got %q", arg)
		}
		n, err := strconv.Atoi(nodes)
		if err != nil {
			return ordd.Schedule{}, fmt.Errorf("bad node limit %q", nodes)
		}
		m, err := strconv.Atoi(ms)
		if err != nil {
			return ordd.Schedule{}, fmt.Errorf("bad time limit %q", ms)
		}
		return ordd.TimeSizeLimit(n, time.Duration(m)*time.Millisecond), nil
	}
	return ordd.Schedule{}, fmt.Errorf("unknown schedule %q", s)
}
