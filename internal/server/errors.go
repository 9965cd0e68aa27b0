package server

import (
	"encoding/json"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"minitwitql/internal/apperr"
)

// writeErrors responds with a GraphQL envelope holding only errors.
func writeErrors(w http.ResponseWriter, status int, errs ...error) {
	resp := graphql.Response{}
	for _, err := range errs {
		qe := gqlerrors.Errorf("%s", err.Error())
		qe.Extensions = map[string]interface{}{"code": apperr.KindOf(err).Code()}
		resp.Errors = append(resp.Errors, qe)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&resp)
}
