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
	"strings"

	"github.com/stockparfait/errors"
)

// Domain of the CFTC public reporting portal.
const Domain = "publicreporting.cftc.gov"

// Fields common to all the COT report datasets.
const (
	MarketField     = "market_and_exchange_names"
	ReportDateField = "report_date_as_yyyy_mm_dd"
)

// Order is a SoQL $order expression.
type Order string

// Values of Order.
const (
	DescOrder = Order(ReportDateField + " DESC") // most recent first
	AscOrder  = Order(ReportDateField + " ASC")
)

// ReportType selects the COT report variant, and thus the dataset to query.
// The zero value is the legacy futures-only report.
type ReportType int

// Values of ReportType.
const (
	LegacyFuturesOnly ReportType = iota
	LegacyCombined
	DisaggregatedFuturesOnly
	DisaggregatedCombined
	TFFFuturesOnly // Traders in Financial Futures
	TFFCombined
)

type reportInfo struct {
	name    string
	dataset string
}

var reportInfos = [...]reportInfo{
	LegacyFuturesOnly:        {"legacy-futures-only", "6dca-aqww"},
	LegacyCombined:           {"legacy-combined", "jun7-fc8e"},
	DisaggregatedFuturesOnly: {"disaggregated-futures-only", "72hh-3qpy"},
	DisaggregatedCombined:    {"disaggregated-combined", "kh3c-gbw2"},
	TFFFuturesOnly:           {"tff-futures-only", "gpe5-46if"},
	TFFCombined:              {"tff-combined", "yw9f-hn96"},
}

// ReportTypes lists all the supported report variants.
func ReportTypes() []ReportType {
	res := make([]ReportType, len(reportInfos))
	for i := range reportInfos {
		res[i] = ReportType(i)
	}
	return res
}

func (r ReportType) valid() bool {
	return r >= 0 && int(r) < len(reportInfos)
}

// DatasetID is the SODA dataset identifier of the report, or "" for an
// unknown report type.
func (r ReportType) DatasetID() string {
	if !r.valid() {
		return ""
	}
	return reportInfos[r].dataset
}

func (r ReportType) String() string {
	if !r.valid() {
		return "unknown"
	}
	return reportInfos[r].name
}

// ParseReportType converts a report name, as printed by String, into
// ReportType.
func ParseReportType(s string) (ReportType, error) {
	for i, info := range reportInfos {
		if info.name == s {
			return ReportType(i), nil
		}
	}
	names := make([]string, len(reportInfos))
	for i, info := range reportInfos {
		names[i] = info.name
	}
	return 0, errors.Reason("unknown report type '%s', must be one of: %s",
		s, strings.Join(names, ", "))
}

// Set implements flag.Value.
func (r *ReportType) Set(s string) error {
	v, err := ParseReportType(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler, e.g. for config files.
func (r *ReportType) UnmarshalText(text []byte) error {
	return r.Set(string(text))
}
