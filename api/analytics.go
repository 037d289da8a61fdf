package api

import (
	"net/http"

	"hermannm.dev/budget-analytics/db"
)

// Expects:
//   - body: JSON-encoded db.AnalyticsFilter
//
// Returns:
//   - JSON-encoded db.ClassificationPeriodResult
func (api AnalyticsAPI) QueryClassificationPeriods(res http.ResponseWriter, req *http.Request) {
	var filter db.AnalyticsFilter
	if err := decodeBody(res, req, &filter); err != nil {
		sendClientError(res, req, err, "failed to parse analytics filter from request body")
		return
	}

	result, err := api.db.QueryClassificationPeriods(req.Context(), filter)
	if err != nil {
		sendQueryError(res, req, err, "failed to query classification periods")
		return
	}

	sendJSON(res, req, result)
}

// Expects:
//   - body: JSON-encoded db.NormalizedQuery
//
// Returns:
//   - JSON-encoded db.NormalizedAggregatedResult
func (api AnalyticsAPI) QueryNormalizedAggregates(res http.ResponseWriter, req *http.Request) {
	var query db.NormalizedQuery
	if err := decodeBody(res, req, &query); err != nil {
		sendClientError(res, req, err, "failed to parse normalized query from request body")
		return
	}

	result, err := api.db.QueryNormalizedAggregates(req.Context(), query)
	if err != nil {
		sendQueryError(res, req, err, "failed to query normalized aggregates")
		return
	}

	sendJSON(res, req, result)
}
