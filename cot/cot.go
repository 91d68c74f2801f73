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

package cot

import (
	"context"
	"fmt"

	"github.com/stockparfait/cftc/soda"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// DefaultLimit is the number of records requested per market when
// Request.Limit is 0.
const DefaultLimit = 1000

// Conn is a connection to the reporting portal. *soda.Client implements it.
type Conn interface {
	Records(ctx context.Context, q *soda.Query) ([]soda.Record, error)
	Metadata(ctx context.Context, dataset string) (*soda.Metadata, error)
	Close() error
}

var _ Conn = &soda.Client{}

// DialFunc opens a connection to the server at baseURL authenticated with the
// app token.
type DialFunc func(baseURL, token string) (Conn, error)

func dialSODA(baseURL, token string) (Conn, error) {
	c, err := soda.Open(baseURL, token)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DownloadError is the error returned by all Downloader methods when the
// connection or a request to the portal fails. Err is the original failure.
type DownloadError struct {
	Market string // the market being downloaded, if any
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Market != "" {
		return fmt.Sprintf("download failed for '%s' due to %s", e.Market, e.Err)
	}
	return fmt.Sprintf("download failed due to %s", e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Request for COT reports.
type Request struct {
	Report  ReportType // default: LegacyFuturesOnly
	Markets []string   // exact market-and-exchange names
	Limit   int        // per market; 0 = DefaultLimit
	Order   Order      // default: DescOrder
}

// normalize checks the request and fills in the default values.
func (r Request) normalize() (Request, error) {
	if r.Limit < 0 {
		return r, errors.Reason("limit = %d must be >= 0", r.Limit)
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Order == "" {
		r.Order = DescOrder
	}
	if !r.Report.valid() {
		return r, errors.Reason("unknown report type %d", int(r.Report))
	}
	return r, nil
}

// Reports maps each requested market name to its records.
type Reports map[string][]soda.Record

// Count is the total number of records for all markets.
func (r Reports) Count() int {
	n := 0
	for _, records := range r {
		n += len(records)
	}
	return n
}

// MarketFilter is the $where expression matching any of the market names
// exactly. With no names it matches nothing.
func MarketFilter(names ...string) string {
	return soda.AnyEqual(MarketField, names...)
}

// Downloader of COT reports. The zero value is ready to use.
type Downloader struct {
	BaseURL string   // default: "https://" + Domain
	Dial    DialFunc // default: opens a *soda.Client
}

func (d *Downloader) baseURL() string {
	if d.BaseURL == "" {
		return "https://" + Domain
	}
	return d.BaseURL
}

// connect opens a connection, or returns DownloadError.
func (d *Downloader) connect(token string) (Conn, error) {
	dial := d.Dial
	if dial == nil {
		dial = dialSODA
	}
	conn, err := dial(d.baseURL(), token)
	if err != nil {
		return nil, &DownloadError{Err: err}
	}
	return conn, nil
}

func closeConn(ctx context.Context, conn Conn) {
	if err := conn.Close(); err != nil {
		logging.Warningf(ctx, "failed to close connection: %s", err.Error())
	}
}

// Download the reports for each market in req.Markets, one request per market
// over a single connection. Any failure aborts the whole download and is
// returned as *DownloadError. No connection is made when there are no markets.
func (d *Downloader) Download(ctx context.Context, token string, req Request) (Reports, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, errors.Annotate(err, "invalid request")
	}
	res := make(Reports)
	if len(req.Markets) == 0 {
		return res, nil
	}
	conn, err := d.connect(token)
	if err != nil {
		return nil, err
	}
	defer closeConn(ctx, conn)

	q := soda.NewQuery(req.Report.DatasetID()).Limit(req.Limit).Order(string(req.Order))
	for _, market := range req.Markets {
		records, err := conn.Records(ctx, q.Where(MarketFilter(market)))
		if err != nil {
			return nil, &DownloadError{Market: market, Err: err}
		}
		logging.Infof(ctx, "COT: downloaded %d %s records for %s",
			len(records), req.Report, market)
		res[market] = records
	}
	return res, nil
}

// Columns fetches the schema of the report's dataset.
func (d *Downloader) Columns(ctx context.Context, token string, report ReportType) (soda.Schema, error) {
	if !report.valid() {
		return nil, errors.Reason("unknown report type %d", int(report))
	}
	conn, err := d.connect(token)
	if err != nil {
		return nil, err
	}
	defer closeConn(ctx, conn)

	m, err := conn.Metadata(ctx, report.DatasetID())
	if err != nil {
		return nil, &DownloadError{Err: err}
	}
	return m.Schema, nil
}
