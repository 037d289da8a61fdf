package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
)

type fakeDB struct {
	classificationResult db.ClassificationPeriodResult
	normalizedResult     db.NormalizedAggregatedResult
	err                  error

	receivedFilter db.AnalyticsFilter
	receivedQuery  db.NormalizedQuery
}

func (fake *fakeDB) QueryClassificationPeriods(
	ctx context.Context,
	filter db.AnalyticsFilter,
) (db.ClassificationPeriodResult, error) {
	fake.receivedFilter = filter
	return fake.classificationResult, fake.err
}

func (fake *fakeDB) QueryNormalizedAggregates(
	ctx context.Context,
	query db.NormalizedQuery,
) (db.NormalizedAggregatedResult, error) {
	fake.receivedQuery = query
	return fake.normalizedResult, fake.err
}

var testConfig = config.API{Port: "8000", RateLimit: 100, RateBurst: 100}

const classificationPeriodsBody = `{
	"accountCategory": "EXPENSE",
	"reportPeriod": {
		"type": "QUARTER",
		"selection": {"interval": {"start": "2022-Q3", "end": "2023-Q2"}}
	},
	"functionalPrefixes": ["65."]
}`

func sendRequest(t *testing.T, api AnalyticsAPI, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	res := httptest.NewRecorder()
	api.ServeHTTP(res, req)
	return res
}

func decodeErrorResponse(t *testing.T, res *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestQueryClassificationPeriods(t *testing.T) {
	fake := &fakeDB{classificationResult: db.ClassificationPeriodResult{
		Rows: []db.ClassificationPeriodData{{
			FunctionalCode: "65.03",
			FunctionalName: "Secondary education",
			EconomicCode:   "10.01",
			EconomicName:   "Salaries",
			Year:           2022,
			Amount:         decimal.RequireFromString("1500.25"),
			Count:          3,
		}},
		DistinctClassificationCount: 1,
	}}
	api := NewAnalyticsAPI(fake, testConfig)

	res := sendRequest(t, api, "/analytics/classification-periods", classificationPeriodsBody)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	assert.Equal(t, db.AccountCategoryExpense, fake.receivedFilter.AccountCategory)
	assert.Equal(t, db.FrequencyQuarter, fake.receivedFilter.ReportPeriod.Frequency)
	require.NotNil(t, fake.receivedFilter.ReportPeriod.Selection.Interval)
	assert.Equal(
		t,
		db.PeriodDate{Year: 2023, Quarter: 2},
		fake.receivedFilter.ReportPeriod.Selection.Interval.End,
	)
	assert.Equal(t, []string{"65."}, fake.receivedFilter.FunctionalPrefixes)

	var result db.ClassificationPeriodResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	require.Len(t, result.Rows, 1)
	assert.True(t, decimal.RequireFromString("1500.25").Equal(result.Rows[0].Amount))
}

func TestQueryNormalizedAggregates(t *testing.T) {
	fake := &fakeDB{normalizedResult: db.NormalizedAggregatedResult{
		Items: []db.AggregatedClassification{{
			FunctionalCode: "65.03",
			Amount:         decimal.RequireFromString("4601.25"),
			Count:          7,
		}},
		TotalCount: 1,
	}}
	api := NewAnalyticsAPI(fake, testConfig)

	res := sendRequest(t, api, "/analytics/normalized-aggregates", `{
		"filter": {
			"accountCategory": "INCOME",
			"reportPeriod": {"type": "YEAR", "selection": {"dates": ["2020", "2021"]}}
		},
		"factors": {"2020": "1.1", "2021": "1"},
		"pagination": {"limit": 10, "offset": 20},
		"sort": {"by": "COUNT", "order": "ASCENDING"}
	}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	query := fake.receivedQuery
	assert.Equal(t, db.AccountCategoryIncome, query.Filter.AccountCategory)
	assert.True(t, decimal.RequireFromString("1.1").Equal(query.Factors["2020"]))
	assert.Equal(t, db.PaginationParams{Limit: 10, Offset: 20}, query.Pagination)
	assert.Equal(t, db.SortOptions{By: db.SortFieldCount, Order: db.SortOrderAscending}, query.Sort)

	var result db.NormalizedAggregatedResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestInvalidFilterReturnsBadRequest(t *testing.T) {
	fake := &fakeDB{err: &db.InvalidFilterError{
		Field:  "reportPeriod.selection.interval",
		Reason: "start is after end",
	}}
	api := NewAnalyticsAPI(fake, testConfig)

	res := sendRequest(t, api, "/analytics/classification-periods", classificationPeriodsBody)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	body := decodeErrorResponse(t, res)
	assert.Equal(t, "reportPeriod.selection.interval", body.Field)
	assert.Contains(t, body.Error, "start is after end")
}

func TestMalformedBodyReturnsBadRequest(t *testing.T) {
	api := NewAnalyticsAPI(&fakeDB{}, testConfig)

	res := sendRequest(t, api, "/analytics/classification-periods", `{"accountCategory": "SAVINGS"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestTimeoutReturnsGatewayTimeoutWithHint(t *testing.T) {
	fake := &fakeDB{err: &db.TimeoutError{Cause: context.DeadlineExceeded}}
	api := NewAnalyticsAPI(fake, testConfig)

	res := sendRequest(t, api, "/analytics/classification-periods", classificationPeriodsBody)
	assert.Equal(t, http.StatusGatewayTimeout, res.Code)

	body := decodeErrorResponse(t, res)
	assert.Equal(t, timeoutHint, body.Hint)
	assert.NotEmpty(t, body.RequestID)
}

func TestDatabaseErrorReturnsInternalServerError(t *testing.T) {
	fake := &fakeDB{err: &db.DatabaseError{Cause: errors.New("connection refused to 10.0.0.5")}}
	api := NewAnalyticsAPI(fake, testConfig)

	res := sendRequest(t, api, "/analytics/normalized-aggregates", `{"filter": {}}`)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	body := decodeErrorResponse(t, res)
	assert.NotContains(t, body.Error, "10.0.0.5")
}

func TestRequestIDHeader(t *testing.T) {
	api := NewAnalyticsAPI(&fakeDB{}, testConfig)

	res := sendRequest(t, api, "/analytics/classification-periods", classificationPeriodsBody)
	_, err := uuid.Parse(res.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	requestID := uuid.NewString()
	req := httptest.NewRequest(
		http.MethodPost,
		"/analytics/classification-periods",
		strings.NewReader(classificationPeriodsBody),
	)
	req.Header.Set(requestIDHeader, requestID)
	res = httptest.NewRecorder()
	api.ServeHTTP(res, req)
	assert.Equal(t, requestID, res.Header().Get(requestIDHeader))
}

func TestRateLimitPerClient(t *testing.T) {
	api := NewAnalyticsAPI(&fakeDB{}, config.API{Port: "8000", RateLimit: 0.001, RateBurst: 2})

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(
			http.MethodPost,
			"/analytics/classification-periods",
			strings.NewReader(classificationPeriodsBody),
		)
		req.RemoteAddr = remoteAddr
		res := httptest.NewRecorder()
		api.ServeHTTP(res, req)
		return res.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000"))
}

func TestRateLimiterRemovesIdleClients(t *testing.T) {
	limiter := newClientRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(2 * clientLimiterIdleTimeout)
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.NotContains(t, limiter.clients, "10.0.0.1")
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	api := NewAnalyticsAPI(&fakeDB{}, testConfig)

	res := sendRequest(t, api, "/analytics/unknown", "{}")
	assert.Equal(t, http.StatusNotFound, res.Code)
}
