package wikimuseums

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<table class="wikitable sortable">
<tr><th>Nome</th><th>Distrito</th></tr>
<tr><td>Museu do Ipiranga</td><td>Ipiranga</td></tr>
<tr><td>Pinacoteca</td><td>Bom Retiro</td></tr>
<tr><td></td><td>Sem nome</td></tr>
<tr><td>Linha incompleta</td></tr>
</table>
</body></html>`

func TestFetchParsesMuseumTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := New(srv.URL, 5)
	events, err := p.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2, "header, nameless and short rows are skipped")
	assert.Equal(t, "Museu do Ipiranga", events[0].Title)
	assert.Equal(t, "Ipiranga", events[0].District)
	assert.Equal(t, "Variado", events[0].TimeText)
	assert.Equal(t, srv.URL, events[0].Link)
	assert.Equal(t, "Pinacoteca", events[1].Title)
}

func TestFetchMissingTableIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>sem tabela</p></body></html>"))
	}))
	defer srv.Close()

	p := New(srv.URL, 5)
	_, err := p.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "museum table not found")
}

func TestFetchNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, 5)
	_, err := p.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
