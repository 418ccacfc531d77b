package site

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | NABR climate report</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<nav>
  <a href="index.html"{{if eq .Slug "index"}} class="active"{{end}}>Overview</a>
  {{- range .Nav}}
  <a href="{{.Slug}}.html"{{if eq .Slug $.Slug}} class="active"{{end}}>{{.Title}}</a>
  {{- end}}
</nav>
<main>
<h1>{{.Title}}</h1>
{{template "content" .}}
</main>
<footer>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</footer>
</body>
</html>
{{end}}`

const indexTemplate = `{{define "content"}}
<p>Climate, soil moisture, and vegetation at {{.Meta.Locations}} monitoring points, {{.Meta.FirstYear}} to {{.Meta.LastYear}}.</p>
<table>
  <tr><th>Historical rows</th><td>{{.Meta.HistoricRows}}</td></tr>
  <tr><th>Near-term rows</th><td>{{.Meta.NearTermRows}}</td></tr>
  <tr><th>Classified rows</th><td>{{.Meta.ClassifiedRows}}</td></tr>
  <tr><th>Dropped (missing averages)</th><td>{{.Meta.DroppedRows}}</td></tr>
  <tr><th>Fallback drought rule</th><td>{{.Meta.FallbackRows}}</td></tr>
  <tr><th>Region center</th><td>{{printf "%.4f, %.5f" .Meta.Center.Lon .Meta.Center.Lat}}</td></tr>
</table>
<ul>
{{- range .Nav}}
  <li><a href="{{.Slug}}.html">{{.Title}}</a></li>
{{- end}}
</ul>
{{end}}`

const pageTemplate = `{{define "content"}}
{{- range .Page.Summary}}
<p>{{.}}</p>
{{- end}}
{{- if .Page.Tabs}}
<div class="tabs">
  {{- range $i, $tab := .Page.Tabs}}
  <button data-tab="{{$i}}">{{$tab}}</button>
  {{- end}}
</div>
{{- end}}
{{- range $i, $c := .Page.Charts}}
<figure id="{{$c.ID}}"{{if $.Page.Tabs}} data-tab="{{$i}}"{{end}}>
  <img src="{{$c.ID}}.svg" alt="{{$c.Title}}">
  {{- if $c.Dropdown}}
  <select data-chart="{{$c.ID}}">
    {{- range $j, $o := $c.Dropdown}}
    <option value="{{$j}}" data-src="{{optionFile $c.ID $j}}">{{$o.Label}}</option>
    {{- end}}
  </select>
  <figcaption></figcaption>
  {{- end}}
  {{- if $c.Legend}}
  <ul class="legend">
    {{- range $c.Legend}}
    <li><span style="background: {{.Color}}"></span>{{.Label}}</li>
    {{- end}}
  </ul>
  {{- end}}
</figure>
{{- end}}
{{- range .Page.Tables}}
<h2>{{.Title}}</h2>
<table>
  <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
  {{- range .Rows}}
  <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
  {{- end}}
</table>
{{- end}}
<script type="application/json" id="chart-data">{{.Data}}</script>
<script>` + controlsScript + `</script>
{{end}}`

// controlsScript drives the dropdowns and tabs. A dropdown swaps in the SVG
// drawn for its option and lists the series that option shows; a tab shows
// only its own figure.
const controlsScript = `
(function () {
  var charts = JSON.parse(document.getElementById("chart-data").textContent) || [];
  var byId = {};
  charts.forEach(function (c) { byId[c.id] = c; });

  function shownSeries(chart, option) {
    var visible = chart.dropdown[option].visible;
    return (chart.series || []).filter(function (s, i) { return visible[i]; })
      .map(function (s) { return s.name; });
  }

  document.querySelectorAll("select[data-chart]").forEach(function (sel) {
    var fig = document.getElementById(sel.dataset.chart);
    var img = fig.querySelector("img");
    var caption = fig.querySelector("figcaption");
    function update() {
      img.src = sel.options[sel.selectedIndex].dataset.src;
      caption.textContent = shownSeries(byId[sel.dataset.chart], sel.selectedIndex).join(", ");
    }
    sel.addEventListener("change", update);
    update();
  });

  var buttons = document.querySelectorAll(".tabs button");
  function selectTab(tab) {
    buttons.forEach(function (b) { b.classList.toggle("active", b.dataset.tab === tab); });
    document.querySelectorAll("figure[data-tab]").forEach(function (f) { f.hidden = f.dataset.tab !== tab; });
  }
  buttons.forEach(function (b) {
    b.addEventListener("click", function () { selectTab(b.dataset.tab); });
  });
  if (buttons.length > 0) {
    selectTab(buttons[0].dataset.tab);
  }
})();
`

const stylesheet = `body { font-family: system-ui, sans-serif; margin: 0; color: #222; }
nav { background: #33312e; padding: 0.6rem 1rem; }
nav a { color: #eee; margin-right: 1rem; text-decoration: none; }
nav a.active { border-bottom: 2px solid #fdae61; }
main { max-width: 60rem; margin: 0 auto; padding: 1rem; }
figure { margin: 1.5rem 0; }
figure img { width: 100%; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; text-align: left; }
.tabs button { margin-right: 0.3rem; }
.tabs button.active { border-bottom: 2px solid #fdae61; }
figcaption { color: #555; font-size: 0.9rem; }
.legend { list-style: none; padding: 0; display: flex; gap: 1rem; }
.legend span { display: inline-block; width: 0.8rem; height: 0.8rem; margin-right: 0.3rem; }
footer { text-align: center; color: #777; padding: 1rem; }
`
