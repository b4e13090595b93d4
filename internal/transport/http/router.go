package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Services are the application entrypoints exposed over HTTP.
type Services struct {
	CreateEvent EventCreator
	Mint        Minter
	Lookup      EventReader
	Inspector   ContractInspector
	Reconciler  SubmissionChecker
}

// NewRouter registers the API routes behind request logging and CORS.
func NewRouter(svc Services, corsOrigins []string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthHandler)
	r.Get("/contract", HandleContract(svc.Inspector))
	r.Route("/events", func(r chi.Router) {
		r.Post("/", HandleCreateEvent(svc.CreateEvent))
		r.Get("/{code}", HandleGetEvent(svc.Lookup))
		r.Post("/{code}/mint", HandleMint(svc.Mint))
	})
	r.Get("/transactions/{hash}", HandleGetTransaction(svc.Reconciler))

	return RequestLogger(CORS(corsOrigins, r), logger)
}
