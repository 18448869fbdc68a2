package controllers_test

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/test"
	"github.com/xuri/excelize/v2"
)

func (suite *TestSuiteStandard) createLog() {
	ctx := context.Background()
	engine := suite.controller.Engine

	for i := range 60 {
		suite.Require().Nil(engine.Deposit(ctx, 1, int64(i+1), "food"))
	}
	suite.Require().Nil(engine.DepositAt(ctx, 2, -95000, "rent", now.Add(24*time.Hour)))
}

func (suite *TestSuiteStandard) TestGetLog() {
	suite.createLog()

	tests := []struct {
		query  string
		count  int
		total  int64
		limit  int
		offset uint
		first  int64
	}{
		{"", 50, 61, 50, 0, 1},
		{"?limit=-1", 61, 61, -1, 0, 1},
		{"?limit=5&offset=58", 3, 61, 5, 58, 59},
		{"?envelope=2", 1, 1, 50, 0, -95000},
		{"?envelope=3", 0, 0, 50, 0, 0},
		{"?limit=0", 0, 61, 0, 0, 0},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			recorder := suite.request(http.MethodGet, "/v1/log"+tt.query, nil)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response controllers.LogListResponse
			test.DecodeResponse(suite.T(), &recorder, &response)
			suite.Require().NotNil(response.Pagination)
			suite.Assert().Equal(controllers.Pagination{
				Count:  tt.count,
				Offset: tt.offset,
				Limit:  tt.limit,
				Total:  tt.total,
			}, *response.Pagination)

			suite.Require().Len(response.Data, tt.count)
			if tt.count > 0 {
				suite.Assert().Equal(tt.first, response.Data[0].AmountCents)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestGetLogEntry() {
	effective := now.Add(24 * time.Hour)
	suite.Require().Nil(suite.controller.Engine.DepositAt(context.Background(), 2, -95000, " rent ", effective))

	recorder := suite.request(http.MethodGet, "/v1/log", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response controllers.LogListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 1)

	entry := response.Data[0]
	suite.Assert().Equal(uint(2), entry.EnvelopeID)
	suite.Assert().Equal("rent", entry.Description)
	suite.Assert().Equal("-950", entry.Amount.String())
	suite.Assert().True(effective.Equal(entry.EffectiveTime))
	suite.Assert().Equal("http://example.com/v1/envelopes/2", entry.Links.Envelope)
}

func (suite *TestSuiteStandard) TestGetLogInvalidQuery() {
	recorder := suite.request(http.MethodGet, "/v1/log?offset=-3", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetLogExport() {
	suite.createLog()

	recorder := suite.request(http.MethodGet, "/v1/log/export", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	suite.Assert().Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", recorder.Header().Get("Content-Type"))
	suite.Assert().Contains(recorder.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(recorder.Body.Bytes()))
	suite.Require().Nil(err)
	defer f.Close()

	rows, err := f.GetRows("Log")
	suite.Require().Nil(err)
	suite.Require().Len(rows, 62, "Header and one row per entry")

	suite.Assert().Equal([]string{"ID", "Envelope ID", "Envelope", "Effective time", "Description", "Amount (EUR)", "Amount (minor units)"}, rows[0])
	suite.Assert().Equal([]string{"61", "2", "Rent", "2024-01-08T12:00:00Z", "rent", "-950", "-95000"}, rows[61])

	width, err := f.GetColWidth("Log", "E")
	suite.Require().Nil(err)
	suite.Assert().Equal(float64(40), width, "The description column is widened")
}

func (suite *TestSuiteStandard) TestLogDatabaseClosed() {
	suite.CloseDB()

	recorder := suite.request(http.MethodGet, "/v1/log", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)

	recorder = suite.request(http.MethodGet, "/v1/log/export", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)
}
