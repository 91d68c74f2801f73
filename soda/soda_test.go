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
	"net/url"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSODA(t *testing.T) {
	t.Parallel()

	Convey("Query builds nondestructively", t, func() {
		Convey("Where", func() {
			q := NewQuery("abcd-1234")
			q2 := q.Where("a = 'b'")
			So(len(q.Values()), ShouldEqual, 0)
			So(q2.Values(), ShouldResemble, url.Values{"$where": []string{"a = 'b'"}})
		})

		Convey("Options", func() {
			q := NewQuery("abcd-1234")
			q2 := q.Order("date DESC")
			q3 := q.Select("c1", "c2")
			q4 := q.Limit(100)
			q5 := q.Offset(10)
			So(len(q.Values()), ShouldEqual, 0)
			So(q2.Values(), ShouldResemble, url.Values{"$order": []string{"date DESC"}})
			So(q3.Values(), ShouldResemble, url.Values{"$select": []string{"c1,c2"}})
			So(q4.Values(), ShouldResemble, url.Values{"$limit": []string{"100"}})
			So(q5.Values(), ShouldResemble, url.Values{"$offset": []string{"10"}})
		})

		Convey("Non-positive limit and offset are dropped", func() {
			q := NewQuery("abcd-1234").Limit(-5).Offset(-1)
			So(len(q.Values()), ShouldEqual, 0)
		})

		Convey("Select does not share the caller's columns", func() {
			cols := []string{"c1", "c2"}
			q := NewQuery("abcd-1234").Select(cols...)
			cols[0] = "changed"
			So(q.Values().Get("$select"), ShouldEqual, "c1,c2")
		})

		Convey("Copy does not share columns", func() {
			cols := []string{"c1", "c2"}
			q := NewQuery("abcd-1234").Select(cols...)
			q2 := q.Copy()
			q2.columns[0] = "changed"
			So(q.Values().Get("$select"), ShouldEqual, "c1,c2")
		})

		Convey("Path", func() {
			So(NewQuery("abcd-1234").Path(), ShouldEqual, "/resource/abcd-1234.json")
		})
	})

	Convey("SoQL helpers", t, func() {
		Convey("Quote doubles single quotes", func() {
			So(Quote("plain"), ShouldEqual, "'plain'")
			So(Quote("O'NEIL"), ShouldEqual, "'O''NEIL'")
			So(Quote("''"), ShouldEqual, "''''''")
			So(Quote(""), ShouldEqual, "''")
		})

		Convey("Equal", func() {
			So(Equal("col", "it's"), ShouldEqual, "col = 'it''s'")
		})

		Convey("AnyEqual", func() {
			So(AnyEqual("col"), ShouldEqual, MatchNothing)
			So(AnyEqual("col", "a"), ShouldEqual, "col = 'a'")
			So(AnyEqual("col", "a", "b'c"), ShouldEqual, "col = 'a' OR col = 'b''c'")
		})
	})

	Convey("Open validates the base URL", t, func() {
		_, err := Open("ftp://example.com", "")
		So(err, ShouldNotBeNil)
		_, err = Open("https://", "")
		So(err, ShouldNotBeNil)
		_, err = Open("://bad", "")
		So(err, ShouldNotBeNil)
		c, err := Open("https://example.com/", "")
		So(err, ShouldBeNil)
		So(c.BaseURL(), ShouldEqual, "https://example.com")
	})

	Convey("API calls work correctly", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{"[]"}

		ctx := fetch.UseClient(context.Background(), server.Client())
		c, err := Open(server.URL(), "testtoken")
		So(err, ShouldBeNil)
		defer c.Close()

		Convey("Records", func() {
			server.ResponseBody = []string{
				`[{"name": "one", "num": "42"}, {"name": "two", "num": "84", "extra": 1}]`}
			q := NewQuery("abcd-1234").Where(Equal("name", "one")).Order("num DESC").Limit(5)
			records, err := c.Records(ctx, q)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []Record{
				{"name": "one", "num": "42"},
				{"name": "two", "num": "84", "extra": float64(1)},
			})
			So(server.RequestPath, ShouldEqual, "/resource/abcd-1234.json")
			expectedQuery := q.Values()
			expectedQuery["$$app_token"] = []string{"testtoken"}
			So(server.RequestQuery, ShouldResemble, expectedQuery)
		})

		Convey("Records with no rows", func() {
			records, err := c.Records(ctx, NewQuery("abcd-1234"))
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []Record{})
		})

		Convey("Records without app token", func() {
			anon, err := Open(server.URL(), "")
			So(err, ShouldBeNil)
			_, err = anon.Records(ctx, NewQuery("abcd-1234").Limit(1))
			So(err, ShouldBeNil)
			So(server.RequestQuery, ShouldResemble, url.Values{"$limit": []string{"1"}})
		})

		Convey("Records fails on a malformed response", func() {
			server.ResponseBody = []string{"not json"}
			_, err := c.Records(ctx, NewQuery("abcd-1234"))
			So(err, ShouldNotBeNil)
		})

		Convey("Records does not retry server errors", func() {
			server.ResponseStatus = []int{500, 200}
			server.ResponseBody = []string{"[]", `[{"a": "1"}]`}
			_, err := c.Records(ctx, NewQuery("abcd-1234"))
			So(err, ShouldNotBeNil)
		})

		Convey("Records fails after Close", func() {
			So(c.Close(), ShouldBeNil)
			So(c.Closed(), ShouldBeTrue)
			_, err := c.Records(ctx, NewQuery("abcd-1234"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "client is closed")
		})

		Convey("Metadata", func() {
			server.ResponseBody = []string{`{
  "id": "abcd-1234",
  "name": "A test dataset",
  "description": "Testing",
  "rowsUpdatedAt": 1700000000,
  "columns": [
    {"id": 1, "name": "Name", "dataTypeName": "text", "fieldName": "name"},
    {"id": 2, "name": "Number", "dataTypeName": "number", "fieldName": "num"}
  ]
}`}
			m, err := c.Metadata(ctx, "abcd-1234")
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/api/views/abcd-1234.json")
			So(m, ShouldResemble, &Metadata{
				ID:            "abcd-1234",
				Name:          "A test dataset",
				Description:   "Testing",
				RowsUpdatedAt: 1700000000,
				Schema: Schema{
					{FieldName: "name", Name: "Name", Type: "text"},
					{FieldName: "num", Name: "Number", Type: "number"},
				},
			})
		})
	})

	Convey("Schema methods work", t, func() {
		s := Schema{
			{FieldName: "one", Type: "text"},
			{FieldName: "two", Type: "number"},
		}
		So(s.Fields(), ShouldResemble, []string{"one", "two"})
		So(s.MapFields(), ShouldResemble, map[string]int{"one": 0, "two": 1})
		So(s.String(), ShouldEqual, "{one: text, two: number}")
	})
}
