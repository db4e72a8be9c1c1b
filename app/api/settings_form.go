package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/pitch-post/app/database"
)

var settingLabels = map[string]string{
	database.SettingRewriterKeys:        "Rewriter API keys (one per line)",
	database.SettingFacebookPageID:      "Facebook page ID",
	database.SettingFacebookAccessToken: "Facebook page access token",
	database.SettingTelegramBotToken:    "Telegram bot token",
	database.SettingTelegramChatID:      "Telegram chat ID",
}

const settingsTemplateName = "settings"

var settingsTemplate = template.Must(template.New(settingsTemplateName).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pitch Post settings</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
label { display: block; margin-top: 1rem; font-weight: bold; }
input[type=text], textarea { width: 100%; }
.current { color: #666; font-size: 0.9em; }
.notice { background: #e8f5e9; padding: 0.5rem; }
</style>
</head>
<body>
<h1>Settings</h1>
{{if .Saved}}<p class="notice">Settings saved.</p>{{end}}
<form method="post" action="/api/settings/form?key={{.Key}}">
{{range .Settings}}
<label for="{{.Name}}">{{.Label}}</label>
{{if .Multiline}}<textarea id="{{.Name}}" name="{{.Name}}" rows="4"></textarea>{{else}}<input type="text" id="{{.Name}}" name="{{.Name}}">{{end}}
<div class="current">{{if .Configured}}Current: {{.Value}} <input type="checkbox" name="clear" value="{{.Name}}"> clear{{else}}Not set{{end}}</div>
{{end}}
<p><button type="submit">Save</button></p>
</form>
<p>Empty fields keep their current value.</p>
</body>
</html>
`))

type formSetting struct {
	settingResponse
	Label     string
	Multiline bool
}

type settingsPage struct {
	Key      string
	Saved    bool
	Settings []formSetting
}

func (h *Handler) SettingsForm(c *gin.Context) {
	settings, err := h.settingValues(c)
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.String(http.StatusInternalServerError, "Database error")
		return
	}

	page := settingsPage{
		Key:   c.Query("key"),
		Saved: c.Query("saved") == "1",
	}
	for _, s := range settings {
		page.Settings = append(page.Settings, formSetting{
			settingResponse: s,
			Label:           settingLabels[s.Name],
			Multiline:       s.Name == database.SettingRewriterKeys,
		})
	}

	c.HTML(http.StatusOK, settingsTemplateName, page)
}

// SaveSettingsForm stores every non-empty field and removes the settings
// marked for clearing.
func (h *Handler) SaveSettingsForm(c *gin.Context) {
	ctx := c.Request.Context()

	for _, name := range c.PostFormArray("clear") {
		if !database.IsKnownSetting(name) {
			continue
		}
		if err := h.settings.Delete(ctx, name); err != nil {
			slog.Error("Database error", "operation", "delete_setting", "setting", name, "error", err)
			c.String(http.StatusInternalServerError, "Database error")
			return
		}
		slog.Info("Setting deleted", "setting", name)
	}

	for _, name := range database.KnownSettings {
		value, ok := normalizeSetting(name, c.PostForm(name))
		if !ok {
			continue
		}
		if err := h.settings.Set(ctx, name, value); err != nil {
			slog.Error("Database error", "operation", "set_setting", "setting", name, "error", err)
			c.String(http.StatusInternalServerError, "Database error")
			return
		}
		slog.Info("Setting updated", "setting", name)
	}

	c.Redirect(http.StatusSeeOther, "/api/settings/form?saved=1&key="+template.URLQueryEscaper(c.Query("key")))
}
