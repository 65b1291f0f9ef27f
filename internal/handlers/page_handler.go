package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"

	"github.com/ternarybob/sessionshell/internal/common"
)

//go:embed pages
var pagesFS embed.FS

// ChannelPath is the settings channel endpoint the settings page connects to
const ChannelPath = "/ws"

type PageHandler struct {
	logger      arbor.ILogger
	templates   *template.Template
	instruction template.HTML
}

func NewPageHandler(logger arbor.ILogger) (*PageHandler, error) {
	templates, err := template.ParseFS(pagesFS, "pages/*.html")
	if err != nil {
		return nil, err
	}

	source, err := pagesFS.ReadFile("pages/instruction.md")
	if err != nil {
		return nil, err
	}

	var rendered bytes.Buffer
	if err := goldmark.Convert(source, &rendered); err != nil {
		return nil, err
	}

	return &PageHandler{
		logger:      logger,
		templates:   templates,
		instruction: template.HTML(rendered.String()),
	}, nil
}

// InstructionHandler serves the first-run page shown while no url is configured
func (h *PageHandler) InstructionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.render(w, "instruction.html", map[string]interface{}{
		"Body":    h.instruction,
		"Version": common.GetVersion(),
	})
}

// SettingsPageHandler serves the settings window form
func (h *PageHandler) SettingsPageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.render(w, "settings.html", map[string]interface{}{
		"ChannelPath": ChannelPath,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, templateName string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		h.logger.Error().
			Err(err).
			Str("template", templateName).
			Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
