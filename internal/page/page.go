package page

import (
	"bytes"
	"html/template"
)

var tmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="icon" href="/favicon.ico">
</head>
<body style="display:flex;flex-direction:column;align-items:center;justify-content:center;min-height:100vh;font-family:sans-serif">
  <main style="text-align:center">
    <h1>Welcome to {{.AppName}}!</h1>
    <p>Get started by editing <code>internal/page/page.go</code></p>
    <button id="counter" type="button">Count: 0</button>
  </main>
  <script>
    (function () {
      var count = 0;
      var btn = document.getElementById("counter");
      btn.addEventListener("click", function () {
        count++;
        btn.textContent = "Count: " + count;
      });
    })();
  </script>
</body>
</html>
`))

type Data struct {
	Title   string
	AppName string
}

// Render returns the placeholder landing page.
func Render(d Data) ([]byte, error) {
	if d.Title == "" {
		d.Title = "My App"
	}
	if d.AppName == "" {
		d.AppName = "bedrockapp"
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
