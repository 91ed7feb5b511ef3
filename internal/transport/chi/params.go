package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// documentIDParam binds the {documentID} path parameter.
func documentIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "documentID", chi.URLParam(r, "documentID"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid format for parameter documentID: "+err.Error())
		return "", false
	}
	return id, true
}
