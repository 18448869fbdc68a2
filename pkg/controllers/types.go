package controllers

import "errors"

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

var (
	errAmountRequired  = errors.New("either amount or amountCents must be set")
	errAmountAmbiguous = errors.New("amount and amountCents must not be set at the same time")
)
