package preview

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roadmap-mcp/internal/snapshot"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// rendererJS is the inline page script. It is deliberately plain: the
// page is an inspection surface for snapshot data, not a layout engine.
const rendererJS = `
const data = JSON.parse(document.getElementById("roadmap-data").textContent);

function fmtDate(iso) {
  return iso ? iso.slice(0, 10) : "?";
}

function renderItem(item, depth) {
  const row = document.createElement("div");
  row.className = "item depth-" + Math.min(depth, 3);
  row.style.marginLeft = (depth * 24) + "px";
  const progress = item.childCount > 0
    ? " (" + item.completedChildCount + "/" + item.childCount + " " + (item.childType || "children") + "s)"
    : "";
  row.textContent = "[" + item.workItemType + " " + item.id + "] " + item.title +
    " - " + item.state +
    " | " + fmtDate(item.iterationStart) + " .. " + fmtDate(item.iterationEnd) + progress;
  const frag = document.createDocumentFragment();
  frag.appendChild(row);
  (item.children || []).forEach(function (child) {
    frag.appendChild(renderItem(child, depth + 1));
  });
  return frag;
}

const rootEl = document.getElementById("roadmap");
const header = document.createElement("p");
header.textContent = data.project + " / " + data.root_type + " roadmap, fetched " + data.fetched_at;
rootEl.appendChild(header);

(data.streams || []).forEach(function (stream) {
  const section = document.createElement("section");
  const title = document.createElement("h2");
  title.textContent = stream.name;
  section.appendChild(title);
  (stream.workItems || []).forEach(function (item) {
    section.appendChild(renderItem(item, 0));
  });
  rootEl.appendChild(section);
});
`

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: monospace; margin: 2em; }
section { margin-bottom: 1.5em; }
.item { padding: 2px 0; }
.depth-0 { font-weight: bold; }
</style>
</head>
<body>
<h1>%s</h1>
<div id="roadmap"></div>
<script id="roadmap-data" type="application/json">%s</script>
<script>%s</script>
</body>
</html>
`

// WritePage renders a snapshot into a standalone HTML file under dir and
// returns the file path. The inline script is minified at generation time.
func WritePage(dir string, snap snapshot.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	result := api.Transform(rendererJS, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("failed to minify page script: %s", result.Errors[0].Text)
	}

	title := fmt.Sprintf("%s %s roadmap", snap.Project, snap.RootType)
	html := fmt.Sprintf(pageTemplate, title, title, string(payload), string(result.Code))

	name := fmt.Sprintf("roadmap_%s_%s.html", safeName(snap.Project), safeName(snap.RootType))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write preview page: %w", err)
	}

	log.Info().Str("path", path).Msg("Preview page written")
	return path, nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
