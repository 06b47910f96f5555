package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/anyswap/soroban-counter/internal/counterapi"
	"github.com/anyswap/soroban-counter/params"
)

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		writeError(w, err)
		return
	}
	jsonData, err := json.Marshal(resp)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(jsonData)
}

func writeError(w http.ResponseWriter, err error) {
	rpcErr, ok := counterapi.ToRPCError(err).(*rpcjson.Error)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, err.Error())
		return
	}
	status := http.StatusBadRequest
	if rpcErr.Code == -32000 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	jsonData, _ := json.Marshal(rpcErr)
	_, _ = w.Write(jsonData)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	res, err := counterapi.GetServerInfo()
	writeResponse(w, res, err)
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, params.BuildVersion(), nil)
}

// GetCountHandler handler
func GetCountHandler(w http.ResponseWriter, r *http.Request) {
	res, err := counterapi.GetCount()
	writeResponse(w, res, err)
}

// PostCounterHandler handler, op is increment, decrement, reset or refresh
func PostCounterHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	op := vars["op"]
	res, err := counterapi.Invoke(r.Context(), op)
	writeResponse(w, res, err)
}

// ConnectHandler handler
func ConnectHandler(w http.ResponseWriter, r *http.Request) {
	res, err := counterapi.Connect(r.Context())
	writeResponse(w, res, err)
}

// AllowHandler handler
func AllowHandler(w http.ResponseWriter, r *http.Request) {
	res, err := counterapi.Allow(r.Context())
	writeResponse(w, res, err)
}

// HistoryHandler handler
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if val := r.URL.Query().Get("limit"); val != "" {
		var err error
		limit, err = strconv.Atoi(val)
		if err != nil || limit < 0 {
			writeResponse(w, nil, fmt.Errorf("wrong limit %q", val))
			return
		}
	}
	res, err := counterapi.GetHistory(limit)
	writeResponse(w, res, err)
}

// HistoryRecordHandler handler
func HistoryRecordHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := counterapi.GetHistoryRecord(vars["hash"])
	writeResponse(w, res, err)
}
