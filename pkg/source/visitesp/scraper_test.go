package visitesp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<h3>Festival de Inverno</h3>
<p>De 10/09/2026, no centro. <a href="/eventos/festival">Saiba mais</a></p>
<h3>Virada Cultural</h3>
<p>Acontece em 20 de Setembro de 2026 <a href="https://example.com/virada">detalhes</a></p>
<h3>Seção sem data</h3>
<p>Texto institucional sem link.</p>
</body></html>`

func TestFetchParsesCalendarEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := New(srv.URL, 5)
	events, err := p.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2, "headings without a date and link are skipped")

	assert.Equal(t, "Festival de Inverno", events[0].Title)
	assert.Equal(t, "10/09/2026", events[0].DateText)
	assert.Equal(t, srv.URL+"/eventos/festival", events[0].Link)

	assert.Equal(t, "Virada Cultural", events[1].Title)
	assert.Equal(t, "20 de Setembro de 2026", events[1].DateText)
	assert.Equal(t, "https://example.com/virada", events[1].Link)
}

func TestFetchNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := New(srv.URL, 5)
	_, err := p.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
