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

package soda

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// Record is a single row of a dataset, as a JSON object. SODA returns most
// values as strings, including numbers and dates.
type Record = map[string]any

// Client for querying SODA datasets on a single domain. It is not safe for
// concurrent use.
type Client struct {
	baseURL  string // e.g. https://publicreporting.cftc.gov
	appToken string // optional; raises the anonymous rate limit
	closed   bool
	queries  int // number of requests issued, for logging
}

// Open creates a new client for the server at baseURL. The app token may be
// empty. Make sure to Close the client when done.
func Open(baseURL, appToken string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Annotate(err, "invalid base URL '%s'", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Reason("unsupported scheme in base URL '%s'", baseURL)
	}
	if u.Host == "" {
		return nil, errors.Reason("missing host in base URL '%s'", baseURL)
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		appToken: appToken,
	}, nil
}

// Close the client. Any further queries fail. Closing an already closed
// client is a no-op.
func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	return c.closed
}

// BaseURL of the server.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// fetch the JSON document at path into v, adding the app token to the query.
func (c *Client) fetch(ctx context.Context, path string, query url.Values, v any) error {
	if c.closed {
		return errors.Reason("client is closed")
	}
	if c.appToken != "" {
		query.Set("$$app_token", c.appToken)
	}
	c.queries++
	// Failures go straight back to the caller; the default params would retry.
	params := fetch.NewParams().Retries(0)
	if err := fetch.FetchJSON(ctx, c.baseURL+path, v, query, params); err != nil {
		return errors.Annotate(err, "failed to fetch %s", path)
	}
	return nil
}

// Records executes the query and returns the resulting rows in the order
// returned by the server.
func (c *Client) Records(ctx context.Context, q *Query) ([]Record, error) {
	if q == nil {
		return nil, errors.Reason("nil query")
	}
	var records []Record
	if err := c.fetch(ctx, q.Path(), q.Values(), &records); err != nil {
		return nil, errors.Annotate(err, "query of %s failed", q.Dataset())
	}
	logging.Debugf(ctx, "SODA: query %d on %s returned %d rows",
		c.queries, q.Dataset(), len(records))
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Query is a builder for a SODA resource query. All builder methods create a
// copy, leaving the original intact.
type Query struct {
	dataset string // 4x4 dataset identifier, e.g. 6dca-aqww
	where   string
	order   string
	columns []string
	limit   int // 0 = server default
	offset  int
}

// NewQuery creates a new query for the dataset.
func NewQuery(dataset string) *Query {
	return &Query{dataset: dataset}
}

// Copy creates a deep copy of the query.
func (q *Query) Copy() *Query {
	q2 := *q
	if q.columns != nil {
		q2.columns = make([]string, len(q.columns))
		copy(q2.columns, q.columns)
	}
	return &q2
}

// Dataset identifier of the query.
func (q *Query) Dataset() string {
	return q.dataset
}

// Where sets the $where filter expression, replacing any previous one.
func (q *Query) Where(expr string) *Query {
	q2 := q.Copy()
	q2.where = expr
	return q2
}

// Order sets the $order expression, e.g. "date DESC".
func (q *Query) Order(expr string) *Query {
	q2 := q.Copy()
	q2.order = expr
	return q2
}

// Select constrains the result to only these columns.
func (q *Query) Select(columns ...string) *Query {
	q2 := q.Copy()
	q2.columns = make([]string, len(columns))
	copy(q2.columns, columns)
	return q2
}

// Limit sets the maximum number of rows to return. Non-positive values reset
// it to the server's default.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		n = 0
	}
	q2 := q.Copy()
	q2.limit = n
	return q2
}

// Offset skips the first n rows of the result.
func (q *Query) Offset(n int) *Query {
	if n < 0 {
		n = 0
	}
	q2 := q.Copy()
	q2.offset = n
	return q2
}

// Path returns the URL path to add to the base URL.
func (q *Query) Path() string {
	return "/resource/" + q.dataset + ".json"
}

// Values returns the query values for the query. Each call creates a new
// object, so the caller is free to modify it without affecting the query.
func (q *Query) Values() url.Values {
	v := make(url.Values)
	if q.where != "" {
		v.Set("$where", q.where)
	}
	if q.order != "" {
		v.Set("$order", q.order)
	}
	if len(q.columns) > 0 {
		v.Set("$select", strings.Join(q.columns, ","))
	}
	if q.limit > 0 {
		v.Set("$limit", fmt.Sprintf("%d", q.limit))
	}
	if q.offset > 0 {
		v.Set("$offset", fmt.Sprintf("%d", q.offset))
	}
	return v
}

// Column is the schema definition for a single dataset column.
type Column struct {
	FieldName string `json:"fieldName"`    // API field name, used in SoQL
	Name      string `json:"name"`         // human readable name
	Type      string `json:"dataTypeName"` // e.g. text, number, calendar_date
}

// Schema of a dataset, in the order of its columns.
type Schema []Column

// Fields returns the API field names in the schema order.
func (s Schema) Fields() []string {
	res := make([]string, len(s))
	for i, c := range s {
		res[i] = c.FieldName
	}
	return res
}

// MapFields creates a map of {field name -> column index} in the schema.
func (s Schema) MapFields() map[string]int {
	res := make(map[string]int)
	for i, c := range s {
		res[c.FieldName] = i
	}
	return res
}

// String prints a string representation of the schema.
func (s Schema) String() string {
	fields := []string{}
	for _, c := range s {
		fields = append(fields, fmt.Sprintf("%s: %s", c.FieldName, c.Type))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// Metadata is the subset of the SODA view metadata used by this package.
type Metadata struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RowsUpdatedAt int64  `json:"rowsUpdatedAt"` // Unix seconds
	Schema        Schema `json:"columns"`
}

// Metadata fetches the metadata of the dataset, including its schema.
func (c *Client) Metadata(ctx context.Context, dataset string) (*Metadata, error) {
	var m Metadata
	if err := c.fetch(ctx, "/api/views/"+dataset+".json", make(url.Values), &m); err != nil {
		return nil, errors.Annotate(err, "failed to fetch metadata for %s", dataset)
	}
	return &m, nil
}
