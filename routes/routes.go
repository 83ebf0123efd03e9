package routes

import (
	"fmt"
	"net/http"

	"portfolio-server/handlers"
	"portfolio-server/hooks"
	"portfolio-server/security"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler func(w http.ResponseWriter, r *http.Request)
type HandleFn func(router *mux.Router, path string, handler Handler) *mux.Route

var handleFn HandleFn = func(router *mux.Router, path string, handler Handler) *mux.Route {
	return router.HandleFunc(path, handler)
}

// RegisterHandleFn swaps how every route is mounted, e.g. to wrap handlers in tracing.
func RegisterHandleFn(fn HandleFn) {
	handleFn = fn
}

func AddHealthRoutes(r *mux.Router, version string) {
	handleFn(r, "/health", func(w http.ResponseWriter, r *http.Request) {
		apiErr := hooks.ExecHook(hooks.HealthCheck, hooks.HookParams{})
		if apiErr != nil {
			zap.L().Error("error in health check hook", zap.String("msg", apiErr.Msg))
			http.Error(w, apiErr.Msg, apiErr.Status)
			return
		}
		fmt.Fprint(w, "OK")
	}).Methods("GET", "HEAD")

	handleFn(r, "/version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, version)
	}).Methods("GET")
}

func AddApiRoutes(r *mux.Router) {
	addPublicRoutes(r, "/api")
	addAdminRoutes(r, "/api/admin")
	handleFn(r, security.CSPReportPath, handlers.CSPReportHandler).Methods("POST")
}

// AddApiRoutesWithPrefix mounts the public read/write api under another prefix. Admin
// routes are only served under /api.
func AddApiRoutesWithPrefix(r *mux.Router, prefix string) {
	addPublicRoutes(r, prefix)
}

func addPublicRoutes(r *mux.Router, prefix string) {
	handleFn(r, prefix+"/profile", handlers.GetProfileHandler).Methods("GET")
	handleFn(r, prefix+"/summary", handlers.SummaryHandler).Methods("GET")
	handleFn(r, prefix+"/interests", handlers.GetInterestsHandler).Methods("GET")

	handleFn(r, prefix+"/projects", handlers.ListProjectsHandler).Methods("GET")
	handleFn(r, prefix+"/projects/categories", handlers.ListProjectCategoriesHandler).Methods("GET")
	handleFn(r, prefix+"/projects/{slug}", handlers.GetProjectHandler).Methods("GET")

	handleFn(r, prefix+"/skills", handlers.ListSkillsHandler).Methods("GET")
	handleFn(r, prefix+"/skills/categories", handlers.ListSkillCategoriesHandler).Methods("GET")

	handleFn(r, prefix+"/experience", handlers.ListExperienceHandler).Methods("GET")
	handleFn(r, prefix+"/education", handlers.ListEducationHandler).Methods("GET")
	handleFn(r, prefix+"/certifications", handlers.ListCertificationsHandler).Methods("GET")

	handleFn(r, prefix+"/contact", handlers.CreateContactHandler).Methods("POST")

	handleFn(r, prefix+"/newsletter", handlers.SubscribeNewsletterHandler).Methods("POST")
	handleFn(r, prefix+"/newsletter/confirm", handlers.ConfirmNewsletterHandler).Methods("GET")
	handleFn(r, prefix+"/newsletter/unsubscribe", handlers.UnsubscribeNewsletterHandler).Methods("POST")

	handleFn(r, prefix+"/comments", handlers.ListCommentsHandler).Methods("GET")
	handleFn(r, prefix+"/comments", handlers.CreateCommentHandler).Methods("POST")

	handleFn(r, prefix+"/guestbook", handlers.ListGuestbookHandler).Methods("GET")
	handleFn(r, prefix+"/guestbook", handlers.CreateGuestbookHandler).Methods("POST")

	handleFn(r, prefix+"/views/top", handlers.TopViewsHandler).Methods("GET")
	handleFn(r, prefix+"/views/{slug}", handlers.GetViewsHandler).Methods("GET")
	handleFn(r, prefix+"/views/{slug}", handlers.RecordViewHandler).Methods("POST")

	handleFn(r, prefix+"/chat", handlers.ChatHandler).Methods("POST")

	handleFn(r, prefix+"/status", handlers.StatusHandler).Methods("GET")
	handleFn(r, prefix+"/badge/uptime", handlers.UptimeBadgeHandler).Methods("GET")
	handleFn(r, prefix+"/vitals", handlers.ReportVitalHandler).Methods("POST")
	handleFn(r, prefix+"/vitals", handlers.GetVitalsHandler).Methods("GET")
}

func addAdminRoutes(r *mux.Router, prefix string) {
	handleFn(r, prefix+"/sign_in", handlers.SignInHandler).Methods("POST")
	handleFn(r, prefix+"/sign_out", handlers.SignOutHandler).Methods("POST")

	addResourceRoutes(r, prefix+"/projects", handlers.AdminProjects)
	addResourceRoutes(r, prefix+"/skills", handlers.AdminSkills)
	addResourceRoutes(r, prefix+"/experience", handlers.AdminExperiences)
	addResourceRoutes(r, prefix+"/education", handlers.AdminEducations)
	addResourceRoutes(r, prefix+"/certifications", handlers.AdminCertifications)

	handleFn(r, prefix+"/contacts", handlers.ListContactsHandler).Methods("GET")
	handleFn(r, prefix+"/contacts/{id}/status", handlers.UpdateContactStatusHandler).Methods("PATCH")
	handleFn(r, prefix+"/contacts/{id}", handlers.DeleteContactHandler).Methods("DELETE")

	handleFn(r, prefix+"/comments", handlers.ListCommentsForModerationHandler).Methods("GET")
	handleFn(r, prefix+"/comments/{id}/status", handlers.ModerateCommentHandler).Methods("PATCH")
	handleFn(r, prefix+"/comments/{id}", handlers.DeleteCommentHandler).Methods("DELETE")

	handleFn(r, prefix+"/guestbook", handlers.ListGuestbookForModerationHandler).Methods("GET")
	handleFn(r, prefix+"/guestbook/{id}/status", handlers.ModerateGuestbookHandler).Methods("PATCH")
	handleFn(r, prefix+"/guestbook/{id}", handlers.DeleteGuestbookHandler).Methods("DELETE")

	handleFn(r, prefix+"/newsletter", handlers.ListSubscribersHandler).Methods("GET")

	handleFn(r, prefix+"/security/stats", handlers.SecurityStatsHandler).Methods("GET")
	handleFn(r, prefix+"/security/block", handlers.BlockIpHandler).Methods("POST")
	handleFn(r, prefix+"/security/unblock", handlers.UnblockIpHandler).Methods("POST")
	handleFn(r, prefix+"/csp-reports", handlers.ListCSPReportsHandler).Methods("GET")
}

type crud interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

func addResourceRoutes(r *mux.Router, path string, res crud) {
	handleFn(r, path, res.List).Methods("GET")
	handleFn(r, path, res.Create).Methods("POST")
	handleFn(r, path+"/{id}", res.Get).Methods("GET")
	handleFn(r, path+"/{id}", res.Update).Methods("PUT")
	handleFn(r, path+"/{id}", res.Delete).Methods("DELETE")
}

// NewRouter builds the full route table: health, /api and the /api/mobile mirror.
func NewRouter(version string) *mux.Router {
	r := mux.NewRouter()
	AddHealthRoutes(r, version)
	AddApiRoutes(r)
	AddApiRoutesWithPrefix(r, "/api/mobile")
	return r
}
