package nuget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-gg/clifeed/internal/templ"
)

func newIndexServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/flat/microsoft.azure.functions.worker.itemtemplates.netcore/index.json":
			_, _ = w.Write([]byte(`{"versions":["3.1.0","4.0.2","4.0.10","4.1.0-preview1","5.0.0","garbage"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLatestVersion(t *testing.T) {
	ctx := context.Background()
	var hits int
	server := newIndexServer(t, &hits)

	client := NewClient(server.URL+"/flat/", "https://pkg/{{ .PackageID }}/{{ .Version }}",
		templ.NewURLRenderer(), server.Client())

	v, err := client.LatestVersion(ctx, "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", 4)
	require.NoError(t, err)
	assert.Equal(t, "4.1.0-preview1", v)

	v, err = client.LatestVersion(ctx, "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", 3)
	require.NoError(t, err)
	assert.Equal(t, "3.1.0", v)

	t.Run("memoized per package and major", func(t *testing.T) {
		before := hits
		_, err := client.LatestVersion(ctx, "microsoft.azure.functions.worker.itemtemplates.netcore", 4)
		require.NoError(t, err)
		assert.Equal(t, before, hits)
	})

	t.Run("no version for major", func(t *testing.T) {
		_, err := client.LatestVersion(ctx, "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", 2)
		assert.ErrorContains(t, err, "no version with major 2")
	})

	t.Run("unknown package", func(t *testing.T) {
		_, err := client.LatestVersion(ctx, "Unknown.Package", 4)
		assert.ErrorContains(t, err, "unexpected http status")
	})
}

func TestTemplateURL(t *testing.T) {
	var hits int
	server := newIndexServer(t, &hits)

	client := NewClient(server.URL+"/flat", "https://pkg/{{ .PackageID }}/{{ .Version }}",
		templ.NewURLRenderer(), server.Client())

	url, err := client.TemplateURL(context.Background(), "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", 5)
	require.NoError(t, err)
	assert.Equal(t, "https://pkg/Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore/5.0.0", url)
}
