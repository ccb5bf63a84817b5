package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rogerioferraz/aiquery/internal/circuitbreaker"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://example.com/tempo" class='result-link'>Previsão do tempo São Paulo</a></td></tr>
<tr><td class='result-snippet'>Hoje em São Paulo: Mín: 15&#176; e Máx: 22&#176; com sol &amp; nuvens.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/clima" class='result-link'>Clima amanhã</a></td></tr>
<tr><td class='result-snippet'>Amanhã: <b>chuva</b> fraca pela manhã.</td></tr>
</table></body></html>`

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *DuckDuckGo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	d := NewDuckDuckGo(zap.NewNop(), WithEndpoint(srv.URL))
	d.limiter = rate.NewLimiter(rate.Inf, 1)
	d.retryDelay = time.Millisecond
	return d
}

func TestSearchParsesLitePage(t *testing.T) {
	var gotForm url.Values
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		fmt.Fprint(w, litePage)
	})

	results, err := d.Search(context.Background(), "previsão do tempo", "br-pt", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Previsão do tempo São Paulo", results[0].Title)
	assert.Equal(t, "Hoje em São Paulo: Mín: 15° e Máx: 22° com sol & nuvens.", results[0].Body)
	assert.Equal(t, "Clima amanhã", results[1].Title)
	assert.Equal(t, "Amanhã: chuva fraca pela manhã.", results[1].Body)

	assert.Equal(t, "previsão do tempo", gotForm.Get("q"))
	assert.Equal(t, "br-pt", gotForm.Get("kl"))
}

func TestSearchOmitsEmptyMarket(t *testing.T) {
	var gotForm url.Values
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		fmt.Fprint(w, litePage)
	})

	_, err := d.Search(context.Background(), "query", "", 10)
	require.NoError(t, err)
	_, present := gotForm["kl"]
	assert.False(t, present)
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, litePage)
	})

	results, err := d.Search(context.Background(), "query", "br-pt", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Previsão do tempo São Paulo", results[0].Title)
}

func TestSearchEmptyPageYieldsNoResults(t *testing.T) {
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>No results.</body></html>")
	})

	results, err := d.Search(context.Background(), "query", "br-pt", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQueryIsRejected(t *testing.T) {
	d := NewDuckDuckGo(zap.NewNop())
	_, err := d.Search(context.Background(), "   ", "br-pt", 10)
	assert.Error(t, err)
}

func TestSearchServerError(t *testing.T) {
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := d.Search(context.Background(), "query", "br-pt", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearchRetriesAfterRateLimit(t *testing.T) {
	var calls int
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, litePage)
	})

	results, err := d.Search(context.Background(), "query", "br-pt", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, results, 2)
}

func TestSearchGivesUpAfterRepeatedRateLimits(t *testing.T) {
	var calls int
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := d.Search(context.Background(), "query", "br-pt", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, maxFetchAttempts, calls)
}

func TestSearchBreakerOpensAfterRepeatedFailures(t *testing.T) {
	d := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	for i := 0; i < circuitbreaker.DefaultSettings().FailureThreshold; i++ {
		_, err := d.Search(context.Background(), "query", "br-pt", 10)
		require.Error(t, err)
		require.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}

	_, err := d.Search(context.Background(), "query", "br-pt", 10)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestCleanHTMLDecodesNumericEntities(t *testing.T) {
	assert.Equal(t, "Mín: 15° e 21.9º", cleanHTML("M&iacute;n: 15&#176; e 21.9&#186;"))
}

func TestParseLiteResultsAltAttributeOrder(t *testing.T) {
	page := `<a href="https://example.com" class="result-link">Título</a>
<td class="result-snippet">Corpo do resultado</td>`
	results := parseLiteResults(page, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "Título", results[0].Title)
	assert.Equal(t, "Corpo do resultado", results[0].Body)
}
