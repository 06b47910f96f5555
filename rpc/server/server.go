package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/params"
	"github.com/anyswap/soroban-counter/rpc/restapi"
	"github.com/anyswap/soroban-counter/rpc/rpcapi"
)

// StartAPIServer start api server, it is shut down when ctx is done
func StartAPIServer(ctx context.Context) {
	apiServer := params.GetConfig().APIServer
	apiPort := apiServer.Port
	allowedOrigins := apiServer.AllowedOrigins

	corsOptions := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST"}),
	}
	if len(allowedOrigins) != 0 {
		corsOptions = append(corsOptions,
			handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
			handlers.AllowedOrigins(allowedOrigins),
		)
	}

	log.Info("JSON RPC service listen and serving", "port", apiPort, "allowedOrigins", allowedOrigins)
	svr := http.Server{
		Addr: fmt.Sprintf(":%v", apiPort),
		// actions wait for ledger confirmation
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Handler:      handlers.CORS(corsOptions...)(NewRouter(apiServer.MaxRequestsLimit)),
	}
	go func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ListenAndServe error", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svr.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown api server error", "err", err)
		}
		log.Info("api server stopped")
	}()
}

// NewRouter api router, maxRequestsLimit <= 0 disables rate limiting
func NewRouter(maxRequestsLimit int) http.Handler {
	r := mux.NewRouter()

	rpcserver := rpc.NewServer()
	rpcserver.RegisterCodec(rpcjson.NewCodec(), "application/json")
	_ = rpcserver.RegisterService(new(rpcapi.RPCAPI), "counter")

	r.Handle("/rpc", rpcserver)
	r.HandleFunc("/ws", WebsocketHandler)
	r.HandleFunc("/serverinfo", restapi.ServerInfoHandler).Methods("GET")
	r.HandleFunc("/versioninfo", restapi.VersionInfoHandler).Methods("GET")
	r.HandleFunc("/counter", restapi.GetCountHandler).Methods("GET")
	r.HandleFunc("/counter/{op}", restapi.PostCounterHandler).Methods("POST")
	r.HandleFunc("/wallet/connect", restapi.ConnectHandler).Methods("POST")
	r.HandleFunc("/wallet/allow", restapi.AllowHandler).Methods("POST")
	r.HandleFunc("/history", restapi.HistoryHandler).Methods("GET")
	r.HandleFunc("/history/{hash}", restapi.HistoryRecordHandler).Methods("GET")

	methodsExcluesGet := []string{"POST", "HEAD", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}
	methodsExcluesPost := []string{"GET", "HEAD", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}

	r.HandleFunc("/serverinfo", warnHandler).Methods(methodsExcluesGet...)
	r.HandleFunc("/versioninfo", warnHandler).Methods(methodsExcluesGet...)
	r.HandleFunc("/counter", warnHandler).Methods(methodsExcluesGet...)
	r.HandleFunc("/counter/{op}", warnHandler).Methods(methodsExcluesPost...)
	r.HandleFunc("/wallet/connect", warnHandler).Methods(methodsExcluesPost...)
	r.HandleFunc("/wallet/allow", warnHandler).Methods(methodsExcluesPost...)
	r.HandleFunc("/history", warnHandler).Methods(methodsExcluesGet...)
	r.HandleFunc("/history/{hash}", warnHandler).Methods(methodsExcluesGet...)

	if maxRequestsLimit <= 0 {
		return r
	}
	lmt := tollbooth.NewLimiter(float64(maxRequestsLimit), &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	lmt.SetMessage(`{"error":"too many requests"}`)
	lmt.SetMessageContentType("application/json")
	return tollbooth.LimitHandler(lmt, r)
}

func warnHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	fmt.Fprintf(w, "Forbid '%v' on '%v'\n", r.Method, r.RequestURI)
}
