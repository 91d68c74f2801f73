// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//
//		http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cot downloads Commitment of Traders (COT) reports published by the
// CFTC on its public reporting portal, https://publicreporting.cftc.gov .
//
// The portal serves each report variant as a separate SODA dataset. Downloader
// queries one of them for a list of markets, identified by their exact
// market-and-exchange names, e.g. "EURO FX - CHICAGO MERCANTILE EXCHANGE".
// Every market is requested separately, so the limit applies per market, and
// the records are returned keyed by the market name:
//
//	var d cot.Downloader
//	reports, err := d.Download(ctx, appToken, cot.Request{
//		Markets: []string{"EURO FX - CHICAGO MERCANTILE EXCHANGE"},
//		Limit:   5,
//	})
//	for _, r := range reports["EURO FX - CHICAGO MERCANTILE EXCHANGE"] {
//		fmt.Println(r[cot.ReportDateField], r["open_interest_all"])
//	}
//
// Records are passed through exactly as the portal returns them.
package cot
