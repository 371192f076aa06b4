package main

import (
	"net/http"

	"github.com/phrazzld/taskflow/internal/api"
	"github.com/phrazzld/taskflow/internal/api/middleware"
)

// setupRouter builds the HTTP handlers over the application's services.
func (app *application) setupRouter() http.Handler {
	connected := app.config.GitHub.ConnectedRedirect
	if connected == "" {
		connected = api.DefaultConnectedRedirect
	}

	return api.NewRouter(api.Handlers{
		Tasks:     api.NewTaskHandler(app.session.Tasks, app.logger),
		Selection: api.NewSelectionHandler(app.session.Selection, app.projects, app.logger),
		Cache:     api.NewCacheHandler(app.session.Tasks, app.logger),
		GitHub:    api.NewGitHubHandler(app.github, connected, app.logger),
		Updates:   app.updates,
	}, middleware.NewAuthMiddleware(app.jwt), app.logger)
}
