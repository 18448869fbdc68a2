package controllers_test

import (
	"context"
	"net/http"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/test"
)

func (suite *TestSuiteStandard) TestGetEnvelopes() {
	recorder := suite.request(http.MethodGet, "/v1/envelopes", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response controllers.EnvelopeListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 3)
	suite.Assert().Equal("Food", response.Data[0].Name)
	suite.Assert().Equal("http://example.com/v1/envelopes/1", response.Data[0].Links.Self)
	suite.Assert().Equal("http://example.com/v1/envelopes/1/deposits", response.Data[0].Links.Deposits)
	suite.Assert().Equal("http://example.com/v1/log?envelope=1", response.Data[0].Links.Log)
}

func (suite *TestSuiteStandard) TestGetEnvelopesFilter() {
	tests := []struct {
		query string
		names []string
	}{
		{"name=Rent", []string{"Rent"}},
		{"name=*o*", []string{"Food"}},
		{"name=*", []string{"Food", "Rent", "Savings"}},
		{"name=S*", []string{"Savings"}},
		{"name=Holidays", []string{}},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			recorder := suite.request(http.MethodGet, "/v1/envelopes?"+tt.query, nil)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response controllers.EnvelopeListResponse
			test.DecodeResponse(suite.T(), &recorder, &response)

			names := make([]string, 0, len(response.Data))
			for _, e := range response.Data {
				names = append(names, e.Name)
			}
			suite.Assert().Equal(tt.names, names)
		})
	}
}

func (suite *TestSuiteStandard) TestGetEnvelope() {
	suite.Require().Nil(suite.controller.Engine.Deposit(context.Background(), 2, 123456, "rent"))

	recorder := suite.request(http.MethodGet, "/v1/envelopes/2", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response controllers.EnvelopeResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(uint(2), response.Data.ID)
	suite.Assert().Equal(int64(123456), response.Data.CurrentCents)
	suite.Assert().Equal("1234.56", response.Data.Current.StringFixed(2))
}

func (suite *TestSuiteStandard) TestGetEnvelopeErrors() {
	tests := []struct {
		path   string
		status int
		err    string
	}{
		{"/v1/envelopes/4711", http.StatusNotFound, "there is no envelope with this ID"},
		{"/v1/envelopes/0", http.StatusBadRequest, "the specified resource ID is not a valid ID"},
		{"/v1/envelopes/food", http.StatusBadRequest, "the specified resource ID is not a valid ID"},
	}

	for _, tt := range tests {
		suite.Run(tt.path, func() {
			recorder := suite.request(http.MethodGet, tt.path, nil)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
			suite.Assert().Equal(tt.err, test.DecodeError(suite.T(), recorder.Body.Bytes()))
		})
	}
}

func (suite *TestSuiteStandard) TestCreateEnvelope() {
	recorder := suite.request(http.MethodPost, "/v1/envelopes", controllers.EnvelopeEditable{Name: "Holidays"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response controllers.EnvelopeResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(uint(4), response.Data.ID)
	suite.Assert().Equal("Holidays", response.Data.Name)
	suite.Assert().True(response.Data.Projected.IsZero())
}

func (suite *TestSuiteStandard) TestCreateEnvelopeErrors() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Empty body", "", http.StatusBadRequest},
		{"Broken JSON", `{ "name": `, http.StatusBadRequest},
		{"No name", map[string]string{"note": "nothing"}, http.StatusBadRequest},
		{"Blank name", controllers.EnvelopeEditable{Name: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := suite.request(http.MethodPost, "/v1/envelopes", tt.body)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestUpdateEnvelope() {
	recorder := suite.request(http.MethodPatch, "/v1/envelopes/2", controllers.EnvelopeEditable{Name: "Housing"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response controllers.EnvelopeResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal("Housing", response.Data.Name)
}

func (suite *TestSuiteStandard) TestUpdateEnvelopeErrors() {
	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"Not found", "/v1/envelopes/4711", controllers.EnvelopeEditable{Name: "Housing"}, http.StatusNotFound},
		{"Invalid ID", "/v1/envelopes/x", controllers.EnvelopeEditable{Name: "Housing"}, http.StatusBadRequest},
		{"Blank name", "/v1/envelopes/1", controllers.EnvelopeEditable{Name: " "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := suite.request(http.MethodPatch, tt.path, tt.body)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEnvelopesDatabaseClosed() {
	suite.CloseDB()

	recorder := suite.request(http.MethodGet, "/v1/envelopes", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)

	recorder = suite.request(http.MethodPost, "/v1/envelopes", controllers.EnvelopeEditable{Name: "Holidays"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)
}
