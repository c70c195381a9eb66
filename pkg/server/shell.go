package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routes"
)

// shellTemplate is the page served for every application path. The view
// area is filled in by mount commands over the websocket.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.AppName}}</title>
</head>
<body>
<nav id="nav">
{{- range .Links}}
<a href="{{.Href}}" data-path="{{.Path}}">{{.Label}}</a>
{{- end}}
</nav>
<main id="view" data-view=""></main>
<script id="navcore" data-socket="{{.SocketPath}}">
(function () {
  var cfg = document.getElementById("navcore").dataset;
  var view = document.getElementById("view");
  var index = (history.state && history.state.index) || 0;
  var scheme = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(scheme + "//" + location.host + cfg.socket);

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }
  function here() {
    return location.pathname + location.search;
  }

  ws.onopen = function () {
    history.replaceState({ index: index }, "");
    send({ type: "hello", path: here(), index: index });
  };

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    switch (msg.op) {
      case "push":
        index++;
        history.pushState({ index: index }, "", msg.path);
        break;
      case "replace":
        history.replaceState({ index: index }, "", msg.path);
        break;
      case "go":
        history.go(msg.delta);
        break;
      case "mount":
        view.setAttribute("data-view", msg.view);
        view.textContent = msg.view;
        break;
      case "state":
        index = msg.index || 0;
        break;
      case "error":
        console.warn("navcore " + msg.code + ": " + msg.message);
        break;
    }
  };

  window.addEventListener("popstate", function (e) {
    index = (e.state && e.state.index) || 0;
    send({ type: "location", path: here(), index: index });
  });

  document.addEventListener("click", function (e) {
    var a = e.target.closest("a[data-path]");
    if (!a || e.metaKey || e.ctrlKey || e.shiftKey || ws.readyState !== WebSocket.OPEN) return;
    e.preventDefault();
    send({ type: "navigate", path: a.getAttribute("data-path"), replace: a.hasAttribute("data-replace") });
  });
})();
</script>
</body>
</html>
`))

type shellLink struct {
	Href  string
	Path  string
	Label string
}

type shellData struct {
	AppName    string
	SocketPath string
	Links      []shellLink
}

func (s *Server) shellData() shellData {
	base := history.WithBase(nil, s.config.Base)
	data := shellData{
		AppName:    s.config.AppName,
		SocketPath: s.config.SocketPath,
	}
	for _, r := range s.table.Routes() {
		v, ok := r.(routes.View)
		if !ok {
			continue
		}
		label := v.Name
		if label == "" {
			label = strings.TrimPrefix(v.Path, "/")
		}
		data.Links = append(data.Links, shellLink{Href: base.Join(v.Path), Path: v.Path, Label: label})
	}
	return data
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := shellTemplate.Execute(w, s.shellData()); err != nil {
		s.logger.Error("shell render failed", "error", err)
	}
}
