// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command cot-download prints Commitment of Traders reports for the requested
// markets.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/cftc/cot"
	"github.com/stockparfait/cftc/soda"
	"github.com/stockparfait/cftc/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

// downloader is overridden in tests.
var downloader cot.Downloader

// marketList is a repeatable string flag.
type marketList []string

func (m *marketList) String() string { return strings.Join(*m, "; ") }

func (m *marketList) Set(s string) error {
	*m = append(*m, s)
	return nil
}

type Flags struct {
	ConfigDir string // default: ~/.cot
	LogLevel  logging.Level
	Markets   marketList
	Report    cot.ReportType
	Limit     int
	Asc       bool
	Fields    string // comma separated
	CSV       bool
	JSON      bool
	Columns   bool            // print the dataset schema instead of reports
	set       map[string]bool // flags explicitly set on the command line
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("cot-download", flag.ExitOnError)
	fs.StringVar(&flags.ConfigDir, "config",
		filepath.Join(os.Getenv("HOME"), ".cot"),
		"directory containing config.toml")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.Var(&flags.Markets, "market",
		"exact market and exchange name; may be repeated")
	fs.Var(&flags.Report, "report", "report type: legacy-futures-only (default), "+
		"legacy-combined, disaggregated-futures-only, disaggregated-combined, "+
		"tff-futures-only, tff-combined")
	fs.IntVar(&flags.Limit, "limit", cot.DefaultLimit, "max. number of reports per market")
	fs.BoolVar(&flags.Asc, "asc", false, "oldest reports first; default: most recent first")
	fs.StringVar(&flags.Fields, "fields", "", "comma separated fields to print")
	fs.BoolVar(&flags.CSV, "csv", false, "print reports in CSV format; default: text")
	fs.BoolVar(&flags.JSON, "json", false, "print raw reports as JSON")
	fs.BoolVar(&flags.Columns, "columns", false, "print the report's columns and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { flags.set[f.Name] = true })
	if flags.CSV && flags.JSON {
		return nil, errors.Reason("-csv and -json are mutually exclusive")
	}
	if flags.Limit <= 0 {
		return nil, errors.Reason("-limit=%d must be positive", flags.Limit)
	}
	return &flags, nil
}

type Config struct {
	Token   string         `toml:"token"`   // Socrata app token
	Report  cot.ReportType `toml:"report"`  // default report type
	Markets []string       `toml:"markets"` // default markets
	Limit   int            `toml:"limit"`   // default limit per market
	Fields  []string       `toml:"fields"`  // default fields to print
}

func parseConfig(dir string) (*Config, error) {
	filePath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `token = "YourSocrataAppToken"
report = "legacy-futures-only"
markets = ["EURO FX - CHICAGO MERCANTILE EXCHANGE"]
`
			return nil, errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s",
				filePath, sample)
		}
		return nil, errors.Annotate(err,
			"cannot check config file for existence: '%s'", filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	if c.Token == "" {
		return nil, errors.Reason("missing token in %s", filePath)
	}
	return &c, nil
}

// request combines the config defaults with the command line flags.
func request(flags *Flags, config *Config) cot.Request {
	req := cot.Request{
		Report:  config.Report,
		Markets: config.Markets,
		Limit:   config.Limit,
	}
	if flags.set["report"] {
		req.Report = flags.Report
	}
	if len(flags.Markets) > 0 {
		req.Markets = flags.Markets
	}
	if flags.set["limit"] || req.Limit == 0 {
		req.Limit = flags.Limit
	}
	if flags.Asc {
		req.Order = cot.AscOrder
	}
	return req
}

func fields(flags *Flags, config *Config) []string {
	if flags.Fields == "" {
		return config.Fields
	}
	var res []string
	for _, f := range strings.Split(flags.Fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			res = append(res, f)
		}
	}
	return res
}

func printColumns(w io.Writer, schema soda.Schema) error {
	records := make([]soda.Record, len(schema))
	for i, c := range schema {
		records[i] = soda.Record{"field": c.FieldName, "type": c.Type, "name": c.Name}
	}
	tbl := table.NewTable("field", "type", "name")
	tbl.AddRecords(records...)
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print columns")
	}
	return nil
}

func printReports(w io.Writer, flags *Flags, config *Config, req cot.Request, reports cot.Reports) error {
	if flags.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return errors.Annotate(err, "failed to print JSON")
		}
		return nil
	}
	tbl := table.NewTable(fields(flags, config)...)
	tbl.AddReports(reports, req.Markets)
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{MaxColWidth: 40}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func run(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.ConfigDir)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	req := request(flags, config)
	if flags.Columns {
		schema, err := downloader.Columns(ctx, config.Token, req.Report)
		if err != nil {
			return errors.Annotate(err, "failed to fetch columns of %s", req.Report)
		}
		return printColumns(w, schema)
	}
	if len(req.Markets) == 0 {
		return errors.Reason("no markets: use -market or set markets in config")
	}
	logging.Infof(ctx, "downloading %s reports for %d markets...",
		req.Report, len(req.Markets))
	reports, err := downloader.Download(ctx, config.Token, req)
	if err != nil {
		return errors.Annotate(err, "failed to download reports")
	}
	logging.Infof(ctx, "downloaded %d reports", reports.Count())
	return printReports(w, flags, config, req, reports)
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := run(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
