package server

import (
	"bytes"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/pkg/errors"
)

const playgroundTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ title }}</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css">
  <style>body { margin: 0; height: 100vh; } #graphiql { height: 100vh; }</style>
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    // Queries whose root field is login or addUser go to the login endpoint.
    const api = GraphiQL.createFetcher({ url: "{{ endpoint }}" });
    const login = GraphiQL.createFetcher({ url: "{{ login_endpoint }}" });
    const fetcher = function (params, opts) {
      const q = params.query || "";
      return /\b(login|addUser)\s*\(/.test(q) ? login(params, opts) : api(params, opts);
    };
    ReactDOM.createRoot(document.getElementById("graphiql")).render(
      React.createElement(GraphiQL, {
        fetcher: fetcher,
        defaultHeaders: '{ "Authorization": "" }',
        defaultEditorToolsVisibility: true,
      })
    );
  </script>
</body>
</html>
`

// renderPlayground renders the GraphiQL page once at startup.
func renderPlayground(endpoint, loginEndpoint string) ([]byte, error) {
	tpl, err := gonja.FromString(playgroundTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing playground template")
	}
	ctx := exec.NewContext(map[string]interface{}{
		"title":          "minitwitql",
		"endpoint":       endpoint,
		"login_endpoint": loginEndpoint,
	})
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		return nil, errors.Wrap(err, "rendering playground")
	}
	return buf.Bytes(), nil
}
