package server

import "html/template"

type formData struct {
	Packers       []string
	Default       string
	MaxUploadSize int64
}

type errorData struct {
	Status int
	Error  errorResponse
}

const pageStyle = `
body { font-family: sans-serif; margin: 2rem auto; max-width: 40rem; color: #222; }
h1 { font-size: 1.4rem; }
label { display: block; margin: 0.8rem 0 0.2rem; }
code { background: #f2f2f2; padding: 0 0.2rem; }
.error { border-left: 4px solid #c0392b; padding: 0.4rem 0.8rem; background: #fbeeee; }
.dim { color: #777; font-size: 0.9rem; }
`

var formPage = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Plate layout</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Plate layout</h1>
<p>Upload an experiments file with <code>max_well_count</code>, <code>sample_list</code>,
<code>reagent_list</code> and <code>replicate_count</code>.</p>
<form method="post" action="/" enctype="multipart/form-data">
  <label for="file">Experiments (.json, .toml, .yaml)</label>
  <input id="file" type="file" name="file" accept=".json,.toml,.yaml,.yml" required>
  <label for="packer">Packer</label>
  <select id="packer" name="packer">
  {{- range .Packers}}
    <option value="{{.}}"{{if eq . $.Default}} selected{{end}}>{{.}}</option>
  {{- end}}
  </select>
  <label for="seed">Colour seed <span class="dim">(blank for random colours)</span></label>
  <input id="seed" type="number" name="seed" min="1">
  <p><button type="submit">Lay out plates</button></p>
</form>
<p class="dim">Maximum upload size {{.MaxUploadSize}} bytes.</p>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Plate layout failed</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Plate layout failed</h1>
<div class="error">
  <p><strong>{{.Error.Code}}</strong>: {{.Error.Message}}</p>
</div>
<p class="dim">Status {{.Status}}{{with .Error.RequestID}} · request {{.}}{{end}}</p>
<p><a href="/">Try another file</a></p>
</body>
</html>
`))
