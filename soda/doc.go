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

// Package soda implements a minimal client for the Socrata Open Data API
// (SODA), version 2.
//
// Official documentation is at https://dev.socrata.com/docs/endpoints .
//
// A SODA dataset is addressed by its 4x4 identifier (e.g. "6dca-aqww") on a
// given domain. Rows are requested with a read-only query carrying SoQL
// parameters ($where, $limit, $order etc.) and come back as a JSON array of
// objects, one object per row. The client passes these objects through as
// Records without interpreting the values.
//
// This package does not page through results: a query returns at most $limit
// rows, and it is up to the caller to pick the limit.
package soda
